package service

import (
	"context"
	"fmt"
	"time"
)

// Summary holds the aggregate seat counts of a show.
type Summary struct {
	ShowID         uint64 `json:"showId"`
	MovieTitle     string `json:"movieTitle"`
	TotalSeats     int    `json:"totalSeats"`
	BookedCount    int    `json:"bookedCount"`
	HeldCount      int    `json:"heldCount"`
	AvailableCount int    `json:"availableCount"`
	Message        string `json:"message"`
}

// Summary counts booked seats in the ledger and live hold keys in the lock
// store.  The two reads are not taken at one instant, so a hold expiring in
// between can leave the counts briefly off from TotalSeats.
func (c *Coordinator) Summary(ctx context.Context, showID uint64) (*Summary, error) {
	show, err := c.loadShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	booked, err := c.ledger.CountByShow(ctx, showID)
	if err != nil {
		return nil, internalErr("count bookings", err)
	}
	keys, err := c.locks.Keys(ctx, c.holdPattern(showID))
	if err != nil {
		return nil, internalErr("list holds", err)
	}
	held := len(keys)

	return &Summary{
		ShowID:         show.ID,
		MovieTitle:     show.Title,
		TotalSeats:     show.TotalSeats,
		BookedCount:    booked,
		HeldCount:      held,
		AvailableCount: show.TotalSeats - booked - held,
		Message:        fmt.Sprintf("Seats not completed within %s automatically return to 'available' status.", HumanDuration(c.ttl)),
	}, nil
}

// HumanDuration renders a hold lifetime for customer-facing messages.
func HumanDuration(d time.Duration) string {
	switch {
	case d%time.Minute == 0 && d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	case d == time.Second:
		return "1 second"
	default:
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	}
}
