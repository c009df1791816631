package model

import "time"

// Show represents a scheduled screening whose seats are being allocated.
// Shows are read-only for the coordinator; they are created by catalog
// tooling outside this service.
//
// Fields:
//  ID         – primary key identifier.
//  Title      – movie title shown to customers.
//  StartsAt   – when the show begins (UTC).
//  TotalSeats – seat capacity; seat labels S1..S<TotalSeats> derive from it.
//  CreatedAt  – creation timestamp.
type Show struct {
    ID         uint64    // shows.id
    Title      string    // shows.title
    StartsAt   time.Time // shows.starts_at
    TotalSeats int       // shows.total_seats
    CreatedAt  time.Time // shows.created_at
}

// SeatLabels returns every seat label of the show in ascending index order.
func (s *Show) SeatLabels() []string {
    labels := make([]string, 0, s.TotalSeats)
    for i := 1; i <= s.TotalSeats; i++ {
        labels = append(labels, SeatLabel(i))
    }
    return labels
}

// HasSeat reports whether label names a seat of this show.
func (s *Show) HasSeat(label string) bool {
    i, ok := SeatIndex(label)
    return ok && i <= s.TotalSeats
}
