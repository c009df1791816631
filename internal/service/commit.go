package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/seat-commit-coordinator/internal/model"
	"github.com/iliyamo/seat-commit-coordinator/internal/queue"
	"github.com/iliyamo/seat-commit-coordinator/internal/repository"
)

// CommitRequest asks to book every listed seat permanently.
type CommitRequest struct {
	ShowID     uint64
	Seats      []string
	ClaimantID string
}

// CommitResult describes the bookings of a successful commit.
// AlreadyConfirmed is set when an identical earlier commit had already
// booked every seat and nothing new was written.
type CommitResult struct {
	ShowID           uint64          `json:"showId"`
	Seats            []string        `json:"seats"`
	Bookings         []model.Booking `json:"-"`
	AlreadyConfirmed bool            `json:"alreadyConfirmed"`
}

// Commit moves the claimant's holds into the ledger.
//
// A repeated commit of seats already booked by the same claimant succeeds
// without writing.  Seats booked by someone else, or only some of the seats
// booked by this claimant, fail with ErrConflict.  Every seat must then be
// held by the claimant: an absent key is ErrHoldExpired and a key owned by
// another claimant is ErrNotYourHold, checked in request order.  The
// bookings are inserted in one transaction; a unique violation means a
// concurrent commit won and is reported as ErrLostRace.  Hold keys are
// deleted after the insert on a best-effort basis.
func (c *Coordinator) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	r, err := c.prepare(ctx, req.ShowID, req.Seats, req.ClaimantID)
	if err != nil {
		return nil, err
	}
	log := c.log.With(zap.Uint64("show_id", req.ShowID), zap.String("claimant_id", r.claimant))

	existing, err := c.ledger.FindByShowAndSeats(ctx, req.ShowID, r.seats)
	if err != nil {
		return nil, internalErr("check bookings", err)
	}
	if len(existing) > 0 {
		return c.resolveExisting(r, existing)
	}

	keys := c.holdKeys(req.ShowID, r.seats)
	owners, err := c.locks.Owners(ctx, keys)
	if err != nil {
		return nil, internalErr("read holds", err)
	}
	for i, owner := range owners {
		switch owner {
		case r.claimant:
		case "":
			return nil, seatErr(ErrHoldExpired, r.seats[i])
		default:
			return nil, seatErr(ErrNotYourHold, r.seats[i])
		}
	}

	now := c.now().UTC()
	bookings := make([]model.Booking, len(r.seats))
	for i, l := range r.seats {
		bookings[i] = model.Booking{
			ID:         c.newID(),
			ShowID:     req.ShowID,
			SeatLabel:  l,
			ClaimantID: r.claimant,
			CreatedAt:  now,
		}
	}
	if err := c.ledger.InsertBatch(ctx, bookings); err != nil {
		if errors.Is(err, repository.ErrDuplicateBooking) {
			log.Info("commit lost race", zap.Strings("seats", r.seats))
			return nil, seatErr(ErrLostRace, r.seats...)
		}
		return nil, internalErr("insert bookings", err)
	}
	log.Info("seats booked", zap.Strings("seats", r.seats))

	// The bookings are durable from here on; nothing below may fail the commit.
	bg := context.WithoutCancel(ctx)
	if err := c.locks.Delete(bg, keys...); err != nil {
		log.Warn("hold release failed", zap.Strings("keys", keys), zap.Error(err))
	}
	pctx, cancel := context.WithTimeout(bg, c.publishTimeout)
	c.publish(pctx, log, r, bookings, now)
	cancel()

	return &CommitResult{ShowID: req.ShowID, Seats: r.seats, Bookings: bookings}, nil
}

// resolveExisting decides a commit that found some of its seats already
// in the ledger.
func (c *Coordinator) resolveExisting(r *seatRequest, existing []model.Booking) (*CommitResult, error) {
	byLabel := make(map[string]model.Booking, len(existing))
	for _, b := range existing {
		byLabel[b.SeatLabel] = b
	}

	var foreign, mine []string
	for _, l := range r.seats {
		b, ok := byLabel[l]
		switch {
		case !ok:
		case b.ClaimantID == r.claimant:
			mine = append(mine, l)
		default:
			foreign = append(foreign, l)
		}
	}
	if len(foreign) > 0 {
		return nil, seatErr(ErrConflict, foreign...)
	}
	if len(mine) < len(r.seats) {
		return nil, seatErr(ErrConflict, mine...)
	}

	bookings := make([]model.Booking, len(r.seats))
	for i, l := range r.seats {
		bookings[i] = byLabel[l]
	}
	return &CommitResult{
		ShowID:           r.show.ID,
		Seats:            r.seats,
		Bookings:         bookings,
		AlreadyConfirmed: true,
	}, nil
}

func (c *Coordinator) publish(ctx context.Context, log *zap.Logger, r *seatRequest, bookings []model.Booking, at time.Time) {
	if c.events == nil {
		return
	}
	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	ev := queue.BookingCommittedEvent{
		BookingIDs:  ids,
		ShowID:      r.show.ID,
		MovieTitle:  r.show.Title,
		StartsAt:    r.show.StartsAt.UTC().Format(time.RFC3339),
		ClaimantID:  r.claimant,
		SeatLabels:  r.seats,
		CommittedAt: at.Format(time.RFC3339),
	}
	if err := c.events.PublishBookingCommitted(ctx, ev); err != nil {
		log.Warn("publish booking.committed failed", zap.Error(err))
	}
}
