package service

import (
	"context"

	"github.com/iliyamo/seat-commit-coordinator/internal/model"
)

// SeatMap is the full inventory of a show in seat order.
type SeatMap struct {
	ShowID     uint64           `json:"showId"`
	Title      string           `json:"showTitle"`
	TotalSeats int              `json:"totalSeats"`
	Seats      []model.SeatView `json:"seats"`
}

// SeatMap derives the status of every seat of a show.  A ledger row makes a
// seat booked regardless of any stray hold key; a live hold makes it held;
// anything else is available.  Hold keys naming a seat outside the show's
// capacity are ignored.
func (c *Coordinator) SeatMap(ctx context.Context, showID uint64) (*SeatMap, error) {
	show, err := c.loadShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	bookedLabels, err := c.ledger.ListSeatLabels(ctx, showID)
	if err != nil {
		return nil, internalErr("list bookings", err)
	}
	booked := make(map[string]struct{}, len(bookedLabels))
	for _, l := range bookedLabels {
		booked[l] = struct{}{}
	}

	keys, err := c.locks.Keys(ctx, c.holdPattern(showID))
	if err != nil {
		return nil, internalErr("list holds", err)
	}
	held := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if l, ok := c.labelFromKey(showID, k); ok {
			held[l] = struct{}{}
		}
	}

	seats := make([]model.SeatView, show.TotalSeats)
	for i := range seats {
		label := model.SeatLabel(i + 1)
		status := model.SeatAvailable
		if _, ok := booked[label]; ok {
			status = model.SeatBooked
		} else if _, ok := held[label]; ok {
			status = model.SeatHeld
		}
		seats[i] = model.SeatView{SeatNumber: label, Status: status}
	}

	return &SeatMap{
		ShowID:     show.ID,
		Title:      show.Title,
		TotalSeats: show.TotalSeats,
		Seats:      seats,
	}, nil
}
