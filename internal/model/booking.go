package model

import "time"

// Booking is the permanent assignment of one seat of a show to a claimant.
// The ledger enforces uniqueness of (ShowID, SeatLabel); a booking is never
// updated or deleted by the coordinator.
//
// Fields:
//  ID          – opaque row identifier (UUID string).
//  ShowID      – show the seat belongs to.
//  SeatLabel   – derived seat label such as "S12".
//  ClaimantID  – identity that committed the seat.
//  CreatedAt   – when the booking was persisted.
type Booking struct {
    ID         string    // bookings.id
    ShowID     uint64    // bookings.show_id
    SeatLabel  string    // bookings.seat_label
    ClaimantID string    // bookings.claimant_id
    CreatedAt  time.Time // bookings.created_at
}
