package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-commit-coordinator/internal/model"
	"github.com/iliyamo/seat-commit-coordinator/internal/service"
)

const ttl = 600 * time.Second

type env struct {
	clock  *fakeClock
	ledger *memLedger
	locks  *memLocks
	events *recordingPublisher
	svc    *service.Coordinator
}

func newEnv(t *testing.T, totalSeats int) *env {
	t.Helper()
	e := &env{clock: newFakeClock(), ledger: newMemLedger(), events: &recordingPublisher{}}
	e.locks = newMemLocks(e.clock)
	shows := fakeShows{
		1: {ID: 1, Title: "Dune", StartsAt: e.clock.Now().Add(2 * time.Hour), TotalSeats: totalSeats},
	}
	e.svc = service.NewCoordinator(shows, e.ledger, e.locks, ttl, nil,
		service.WithClock(e.clock.Now), service.WithEvents(e.events))
	return e
}

func hold(t *testing.T, svc *service.Coordinator, claimant string, seats ...string) error {
	t.Helper()
	_, err := svc.Hold(context.Background(), service.HoldRequest{ShowID: 1, Seats: seats, ClaimantID: claimant})
	return err
}

func commit(t *testing.T, svc *service.Coordinator, claimant string, seats ...string) (*service.CommitResult, error) {
	t.Helper()
	return svc.Commit(context.Background(), service.CommitRequest{ShowID: 1, Seats: seats, ClaimantID: claimant})
}

func statuses(t *testing.T, svc *service.Coordinator) map[string]model.SeatStatus {
	t.Helper()
	m, err := svc.SeatMap(context.Background(), 1)
	require.NoError(t, err)
	out := make(map[string]model.SeatStatus, len(m.Seats))
	for _, s := range m.Seats {
		out[s.SeatNumber] = s.Status
	}
	return out
}

func TestScenario_HoldConflictCommitSeatMap(t *testing.T) {
	e := newEnv(t, 3)

	require.NoError(t, hold(t, e.svc, "U1", "S1", "S2"))

	err := hold(t, e.svc, "U2", "S2")
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, []string{"S2"}, service.SeatsOf(err))

	res, err := commit(t, e.svc, "U1", "S1", "S2")
	require.NoError(t, err)
	assert.False(t, res.AlreadyConfirmed)
	assert.Len(t, res.Bookings, 2)

	count, _ := e.ledger.CountByShow(context.Background(), 1)
	assert.Equal(t, 2, count)

	m, err := e.svc.SeatMap(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", m.Title)
	assert.Equal(t, []model.SeatView{
		{SeatNumber: "S1", Status: model.SeatBooked},
		{SeatNumber: "S2", Status: model.SeatBooked},
		{SeatNumber: "S3", Status: model.SeatAvailable},
	}, m.Seats)

	assert.Empty(t, e.locks.owner("hold:1:S1"), "hold keys are released after commit")
	require.Len(t, e.events.events, 1)
	assert.Equal(t, []string{"S1", "S2"}, e.events.events[0].SeatLabels)
	assert.Equal(t, "U1", e.events.events[0].ClaimantID)
}

func TestHold_GrantReportsExpiry(t *testing.T) {
	e := newEnv(t, 5)

	res, err := e.svc.Hold(context.Background(), service.HoldRequest{ShowID: 1, Seats: []string{"S2", " S2", "S4"}, ClaimantID: "U1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"S2", "S4"}, res.Seats)
	assert.Equal(t, e.clock.Now().Add(ttl), res.ExpiresAt)
	assert.Equal(t, "U1", e.locks.owner("hold:1:S4"))
}

func TestHold_AlreadyBookedNamesFirstSeatAndTakesNoLocks(t *testing.T) {
	e := newEnv(t, 5)
	require.NoError(t, hold(t, e.svc, "U1", "S3", "S4"))
	_, err := commit(t, e.svc, "U1", "S3", "S4")
	require.NoError(t, err)

	err = hold(t, e.svc, "U2", "S1", "S4", "S3")

	assert.ErrorIs(t, err, service.ErrAlreadyBooked)
	assert.Equal(t, []string{"S4"}, service.SeatsOf(err))
	assert.Empty(t, e.locks.owner("hold:1:S1"))
}

func TestHold_RollbackLeavesNoPartialLocks(t *testing.T) {
	e := newEnv(t, 3)
	require.NoError(t, hold(t, e.svc, "B", "S2"))

	err := hold(t, e.svc, "A", "S1", "S2", "S3")

	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Empty(t, e.locks.owner("hold:1:S1"))
	assert.Empty(t, e.locks.owner("hold:1:S3"))
	assert.Equal(t, "B", e.locks.owner("hold:1:S2"), "another claimant's hold survives rollback")
}

func TestHold_ReholdBySameClaimantIsConflict(t *testing.T) {
	e := newEnv(t, 3)
	require.NoError(t, hold(t, e.svc, "U1", "S1"))

	err := hold(t, e.svc, "U1", "S1")

	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Empty(t, e.locks.owner("hold:1:S1"), "rollback releases the claimant's own hold")
}

func TestHold_ValidatesShowAndSeats(t *testing.T) {
	e := newEnv(t, 3)

	_, err := e.svc.Hold(context.Background(), service.HoldRequest{ShowID: 9, Seats: []string{"S1"}, ClaimantID: "U1"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = hold(t, e.svc, "U1", "S1", "S4", "X")
	assert.ErrorIs(t, err, service.ErrInvalidSeat)
	assert.Equal(t, []string{"S4", "X"}, service.SeatsOf(err))

	assert.ErrorIs(t, hold(t, e.svc, "U1"), service.ErrInvalidInput)
	assert.ErrorIs(t, hold(t, e.svc, " ", "S1"), service.ErrInvalidInput)
	assert.Empty(t, e.locks.owner("hold:1:S1"))
}

func TestHold_ConcurrentClaimantsNeverShareASeat(t *testing.T) {
	e := newEnv(t, 1)
	const n = 32

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := hold(t, e.svc, fmt.Sprintf("U%d", i), "S1")
			if err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, service.ErrConflict)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
}

func TestHold_OverlappingMultiSeatRequestsEndAllOrNothing(t *testing.T) {
	e := newEnv(t, 4)
	const n = 16

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seats := []string{"S1", "S2", "S3"}
			if i%2 == 1 {
				seats = []string{"S3", "S2", "S4"}
			}
			_ = hold(t, e.svc, fmt.Sprintf("U%d", i), seats...)
		}(i)
	}
	wg.Wait()

	// Every claimant that owns any seat must own its whole request.
	owned := make(map[string][]string)
	for _, s := range []string{"S1", "S2", "S3", "S4"} {
		if o := e.locks.owner("hold:1:" + s); o != "" {
			owned[o] = append(owned[o], s)
		}
	}
	for who, seats := range owned {
		assert.Len(t, seats, 3, "claimant %s holds a strict subset %v", who, seats)
	}
}

func TestCommit_IsIdempotent(t *testing.T) {
	e := newEnv(t, 3)
	require.NoError(t, hold(t, e.svc, "U1", "S1", "S2"))

	first, err := commit(t, e.svc, "U1", "S1", "S2")
	require.NoError(t, err)
	second, err := commit(t, e.svc, "U1", "S2", "S1")
	require.NoError(t, err)

	assert.False(t, first.AlreadyConfirmed)
	assert.True(t, second.AlreadyConfirmed)
	assert.Equal(t, 1, e.ledger.count(1, "S1"))
	assert.Equal(t, 1, e.ledger.count(1, "S2"))
	assert.Len(t, e.events.events, 1, "a repeated commit publishes nothing")
}

func TestCommit_HoldExpired(t *testing.T) {
	e := newEnv(t, 3)
	require.NoError(t, hold(t, e.svc, "U1", "S1"))

	e.clock.Advance(ttl + time.Second)
	_, err := commit(t, e.svc, "U1", "S1")

	assert.ErrorIs(t, err, service.ErrHoldExpired)
	assert.Equal(t, []string{"S1"}, service.SeatsOf(err))
	assert.Equal(t, 0, e.ledger.count(1, "S1"))
}

func TestCommit_VerifiesHoldsInRequestOrder(t *testing.T) {
	e := newEnv(t, 4)
	require.NoError(t, hold(t, e.svc, "U1", "S1"))
	require.NoError(t, hold(t, e.svc, "U2", "S2"))

	_, err := commit(t, e.svc, "U1", "S1", "S2", "S3")
	assert.ErrorIs(t, err, service.ErrNotYourHold)
	assert.Equal(t, []string{"S2"}, service.SeatsOf(err))

	_, err = commit(t, e.svc, "U1", "S3", "S2")
	assert.ErrorIs(t, err, service.ErrHoldExpired)
	assert.Equal(t, []string{"S3"}, service.SeatsOf(err))

	assert.Equal(t, "U1", e.locks.owner("hold:1:S1"), "failed commit keeps holds")
}

func TestCommit_ConflictWithOtherOrPartialBookings(t *testing.T) {
	e := newEnv(t, 4)
	require.NoError(t, hold(t, e.svc, "U1", "S1"))
	_, err := commit(t, e.svc, "U1", "S1")
	require.NoError(t, err)

	_, err = commit(t, e.svc, "U2", "S1")
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, []string{"S1"}, service.SeatsOf(err))

	require.NoError(t, hold(t, e.svc, "U1", "S2"))
	_, err = commit(t, e.svc, "U1", "S1", "S2")
	assert.ErrorIs(t, err, service.ErrConflict, "only part of the request is booked")
	assert.Equal(t, 0, e.ledger.count(1, "S2"))
}

func TestCommit_ConcurrentCommitsYieldOneOwner(t *testing.T) {
	e := newEnv(t, 1)
	svc := service.NewCoordinator(
		fakeShows{1: {ID: 1, Title: "Dune", TotalSeats: 1}},
		e.ledger, staleLocks{e.locks}, ttl, nil, service.WithClock(e.clock.Now))
	const n = 24

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			who := fmt.Sprintf("U%d", i)
			ctx := context.WithValue(context.Background(), claimantKey{}, who)
			res, err := svc.Commit(ctx, service.CommitRequest{ShowID: 1, Seats: []string{"S1"}, ClaimantID: who})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				assert.False(t, res.AlreadyConfirmed)
				return
			}
			assert.True(t, errors.Is(err, service.ErrLostRace) || errors.Is(err, service.ErrConflict), err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, e.ledger.count(1, "S1"))
}

func TestSummary_CountsAddUpInSteadyState(t *testing.T) {
	e := newEnv(t, 10)
	require.NoError(t, hold(t, e.svc, "U1", "S1", "S2", "S3"))
	require.NoError(t, hold(t, e.svc, "U2", "S4"))
	_, err := commit(t, e.svc, "U1", "S1", "S2")
	require.NoError(t, err)

	s, err := e.svc.Summary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Dune", s.MovieTitle)
	assert.Equal(t, 2, s.BookedCount)
	assert.Equal(t, 2, s.HeldCount)
	assert.Equal(t, 6, s.AvailableCount)
	assert.Equal(t, s.TotalSeats, s.BookedCount+s.HeldCount+s.AvailableCount)
	assert.Contains(t, s.Message, "10 minutes")

	e.clock.Advance(ttl)
	s, err = e.svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, s.HeldCount)
	assert.Equal(t, 8, s.AvailableCount)
}

func TestSummary_UnknownShow(t *testing.T) {
	e := newEnv(t, 1)
	_, err := e.svc.Summary(context.Background(), 42)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSeatMap_IgnoresForeignAndOutOfRangeKeys(t *testing.T) {
	e := newEnv(t, 2)
	e.locks.set("hold:1:S9", "U1", ttl)
	e.locks.set("hold:12:S1", "U1", ttl)
	e.locks.set("hold:1:S2", "U1", ttl)

	got := statuses(t, e.svc)

	assert.Equal(t, map[string]model.SeatStatus{"S1": model.SeatAvailable, "S2": model.SeatHeld}, got)
}

func TestSeatMap_BookedWinsOverStrayHold(t *testing.T) {
	e := newEnv(t, 2)
	require.NoError(t, hold(t, e.svc, "U1", "S1"))
	_, err := commit(t, e.svc, "U1", "S1")
	require.NoError(t, err)
	e.locks.set("hold:1:S1", "U1", ttl)

	assert.Equal(t, model.SeatBooked, statuses(t, e.svc)["S1"])
}

func TestSeatMap_UnknownShow(t *testing.T) {
	e := newEnv(t, 1)
	_, err := e.svc.SeatMap(context.Background(), 2)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCommit_StalledBrokerDoesNotDelayCommit(t *testing.T) {
	clock := newFakeClock()
	ledger := newMemLedger()
	locks := newMemLocks(clock)
	pub := &stalledPublisher{}
	shows := fakeShows{1: {ID: 1, Title: "Dune", StartsAt: clock.Now().Add(time.Hour), TotalSeats: 3}}
	svc := service.NewCoordinator(shows, ledger, locks, ttl, nil,
		service.WithClock(clock.Now), service.WithEvents(pub), service.WithPublishTimeout(50*time.Millisecond))

	require.NoError(t, hold(t, svc, "U1", "S1"))

	start := time.Now()
	res, err := commit(t, svc, "U1", "S1")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, res.AlreadyConfirmed)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, 1, pub.calls)
	assert.True(t, pub.hadDeadline)
	assert.Equal(t, 1, ledger.count(1, "S1"))
}
