// Package service holds the seat reservation and commit coordinator.  It is
// stateless: every decision is made against the lock store (holds) and the
// booking ledger (permanent ownership), never against in-process state.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/seat-commit-coordinator/internal/model"
	"github.com/iliyamo/seat-commit-coordinator/internal/queue"
	"github.com/iliyamo/seat-commit-coordinator/internal/repository"
)

// ShowCatalog resolves shows.  GetByID returns repository.ErrShowNotFound
// for an unknown id.
type ShowCatalog interface {
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
}

// BookingLedger is the durable store of permanent bookings.  InsertBatch
// must be all-or-nothing and report a unique (show, seat) violation as
// repository.ErrDuplicateBooking.
type BookingLedger interface {
	FindByShowAndSeats(ctx context.Context, showID uint64, labels []string) ([]model.Booking, error)
	ListSeatLabels(ctx context.Context, showID uint64) ([]string, error)
	CountByShow(ctx context.Context, showID uint64) (int, error)
	InsertBatch(ctx context.Context, bookings []model.Booking) error
}

// LockStore is the ephemeral key store holding seat holds.
type LockStore interface {
	AcquireAll(ctx context.Context, keys []string, owner string, ttl time.Duration) ([]bool, error)
	Owners(ctx context.Context, keys []string) ([]string, error)
	ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// EventPublisher receives a notification after every new commit.
type EventPublisher interface {
	PublishBookingCommitted(ctx context.Context, ev queue.BookingCommittedEvent) error
}

// Coordinator implements the seat map, hold, commit and summary operations.
type Coordinator struct {
	shows  ShowCatalog
	ledger BookingLedger
	locks  LockStore
	events EventPublisher
	log    *zap.Logger

	ttl            time.Duration
	publishTimeout time.Duration
	keyPrefix      string
	now       func() time.Time
	newID     func() string
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithEvents publishes booking.committed events through p.
func WithEvents(p EventPublisher) Option { return func(c *Coordinator) { c.events = p } }

// WithPublishTimeout bounds how long a commit waits on the event publisher.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.publishTimeout = d
		}
	}
}

// WithKeyPrefix replaces the default "hold" key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Coordinator) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithClock replaces time.Now, used for expiry and booking timestamps.
func WithClock(now func() time.Time) Option { return func(c *Coordinator) { c.now = now } }

// WithIDGenerator replaces the booking id generator.
func WithIDGenerator(gen func() string) Option { return func(c *Coordinator) { c.newID = gen } }

// NewCoordinator wires the coordinator to its collaborators.  ttl is the
// lifetime of every hold.
func NewCoordinator(shows ShowCatalog, ledger BookingLedger, locks LockStore, ttl time.Duration, log *zap.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Coordinator{
		shows:          shows,
		ledger:         ledger,
		locks:          locks,
		log:            log.With(zap.String("component", "coordinator")),
		ttl:            ttl,
		publishTimeout: 2 * time.Second,
		keyPrefix:      "hold",
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL reports the hold lifetime.
func (c *Coordinator) TTL() time.Duration { return c.ttl }

func (c *Coordinator) holdKey(showID uint64, label string) string {
	return fmt.Sprintf("%s:%d:%s", c.keyPrefix, showID, label)
}

func (c *Coordinator) holdKeys(showID uint64, labels []string) []string {
	keys := make([]string, len(labels))
	for i, l := range labels {
		keys[i] = c.holdKey(showID, l)
	}
	return keys
}

func (c *Coordinator) holdPattern(showID uint64) string {
	return fmt.Sprintf("%s:%d:*", c.keyPrefix, showID)
}

// labelFromKey extracts the seat label of a hold key of showID.
func (c *Coordinator) labelFromKey(showID uint64, key string) (string, bool) {
	return strings.CutPrefix(key, fmt.Sprintf("%s:%d:", c.keyPrefix, showID))
}

func (c *Coordinator) loadShow(ctx context.Context, id uint64) (*model.Show, error) {
	show, err := c.shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return nil, ErrNotFound
		}
		return nil, internalErr("load show", err)
	}
	return show, nil
}

// seatRequest is the validated form shared by hold and commit.
type seatRequest struct {
	show     *model.Show
	seats    []string
	claimant string
}

// prepare resolves the show and normalises the seat list: labels are
// trimmed, duplicates dropped keeping the first occurrence, and every label
// must name a seat of the show.
func (c *Coordinator) prepare(ctx context.Context, showID uint64, seats []string, claimant string) (*seatRequest, error) {
	claimant = strings.TrimSpace(claimant)
	if claimant == "" {
		return nil, fmt.Errorf("%w: claimant is required", ErrInvalidInput)
	}
	labels := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		labels = append(labels, s)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: at least one seat is required", ErrInvalidInput)
	}

	show, err := c.loadShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	var invalid []string
	for _, l := range labels {
		if !show.HasSeat(l) {
			invalid = append(invalid, l)
		}
	}
	if len(invalid) > 0 {
		return nil, seatErr(ErrInvalidSeat, invalid...)
	}
	return &seatRequest{show: show, seats: labels, claimant: claimant}, nil
}
