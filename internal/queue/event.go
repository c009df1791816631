// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCommittedEvent is published once per successful commit that wrote
// new bookings.  It carries enough for downstream consumers to log or
// notify without querying the ledger.
type BookingCommittedEvent struct {
    BookingIDs  []string `json:"booking_ids"`
    ShowID      uint64   `json:"show_id"`
    MovieTitle  string   `json:"movie_title"`
    StartsAt    string   `json:"starts_at"`
    ClaimantID  string   `json:"claimant_id"`
    SeatLabels  []string `json:"seats"`
    CommittedAt string   `json:"committed_at"`
}
