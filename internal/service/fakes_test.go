package service_test

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/iliyamo/seat-commit-coordinator/internal/model"
	"github.com/iliyamo/seat-commit-coordinator/internal/queue"
	"github.com/iliyamo/seat-commit-coordinator/internal/repository"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeShows map[uint64]*model.Show

func (f fakeShows) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	s, ok := f[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return s, nil
}

// memLedger mimics a table with a unique (show_id, seat_label) key.
type memLedger struct {
	mu   sync.Mutex
	rows map[uint64]map[string]model.Booking
}

func newMemLedger() *memLedger {
	return &memLedger{rows: make(map[uint64]map[string]model.Booking)}
}

func (l *memLedger) FindByShowAndSeats(_ context.Context, showID uint64, labels []string) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.Booking
	for _, lb := range labels {
		if b, ok := l.rows[showID][lb]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *memLedger) ListSeatLabels(_ context.Context, showID uint64) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for lb := range l.rows[showID] {
		out = append(out, lb)
	}
	return out, nil
}

func (l *memLedger) CountByShow(_ context.Context, showID uint64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows[showID]), nil
}

func (l *memLedger) InsertBatch(_ context.Context, bookings []model.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range bookings {
		if _, ok := l.rows[b.ShowID][b.SeatLabel]; ok {
			return repository.ErrDuplicateBooking
		}
	}
	for _, b := range bookings {
		if l.rows[b.ShowID] == nil {
			l.rows[b.ShowID] = make(map[string]model.Booking)
		}
		l.rows[b.ShowID][b.SeatLabel] = b
	}
	return nil
}

func (l *memLedger) count(showID uint64, label string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.rows[showID][label]; ok {
		return 1
	}
	return 0
}

type entry struct {
	owner   string
	expires time.Time
}

// memLocks is a key store with SET NX semantics and lazy expiry driven by
// a fake clock.
type memLocks struct {
	mu    sync.Mutex
	clock *fakeClock
	keys  map[string]entry
}

func newMemLocks(clock *fakeClock) *memLocks {
	return &memLocks{clock: clock, keys: make(map[string]entry)}
}

func (m *memLocks) liveLocked(key string) (entry, bool) {
	e, ok := m.keys[key]
	if !ok {
		return entry{}, false
	}
	if !m.clock.Now().Before(e.expires) {
		delete(m.keys, key)
		return entry{}, false
	}
	return e, true
}

func (m *memLocks) AcquireAll(_ context.Context, keys []string, owner string, ttl time.Duration) ([]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]bool, len(keys))
	for i, k := range keys {
		if _, ok := m.liveLocked(k); ok {
			continue
		}
		m.keys[k] = entry{owner: owner, expires: m.clock.Now().Add(ttl)}
		res[i] = true
	}
	return res, nil
}

func (m *memLocks) Owners(_ context.Context, keys []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(keys))
	for i, k := range keys {
		if e, ok := m.liveLocked(k); ok {
			out[i] = e.owner
		}
	}
	return out, nil
}

func (m *memLocks) ReleaseIfOwner(_ context.Context, key, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.liveLocked(key); ok && e.owner == owner {
		delete(m.keys, key)
		return true, nil
	}
	return false, nil
}

func (m *memLocks) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

func (m *memLocks) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.keys {
		if _, ok := m.liveLocked(k); !ok {
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memLocks) owner(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, _ := m.liveLocked(key)
	return e.owner
}

func (m *memLocks) set(key, owner string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = entry{owner: owner, expires: m.clock.Now().Add(ttl)}
}

type claimantKey struct{}

// staleLocks reports every hold as owned by the claimant carried in the
// context.  It stands in for holds that expired and were re-taken between
// verification and insert, which leaves the ledger as the only guard.
type staleLocks struct{ *memLocks }

func (s staleLocks) Owners(ctx context.Context, keys []string) ([]string, error) {
	who, _ := ctx.Value(claimantKey{}).(string)
	out := make([]string, len(keys))
	for i := range out {
		out[i] = who
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingCommittedEvent
}

func (p *recordingPublisher) PublishBookingCommitted(_ context.Context, ev queue.BookingCommittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// stalledPublisher blocks like a broker that accepts connections and never
// answers.  It returns only when the caller's context ends.
type stalledPublisher struct {
	calls       int
	hadDeadline bool
}

func (p *stalledPublisher) PublishBookingCommitted(ctx context.Context, _ queue.BookingCommittedEvent) error {
	p.calls++
	_, p.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}
