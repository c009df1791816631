package service

import (
	"errors"
	"fmt"
	"strings"
)

// Outcomes of the coordinator.  Handlers match them with errors.Is; the
// seat-specific ones arrive wrapped in a *SeatError.
var (
	ErrNotFound      = errors.New("show not found")
	ErrInvalidInput  = errors.New("invalid request")
	ErrInvalidSeat   = errors.New("invalid seat")
	ErrAlreadyBooked = errors.New("seat already booked")
	ErrConflict      = errors.New("seat conflict")
	ErrLostRace      = errors.New("seat booked by a concurrent commit")
	ErrHoldExpired   = errors.New("hold expired")
	ErrNotYourHold   = errors.New("seat held by another claimant")
	ErrInternal      = errors.New("internal error")
)

// SeatError names the seats an outcome applies to.
type SeatError struct {
	Err   error
	Seats []string
}

func (e *SeatError) Error() string {
	if len(e.Seats) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, strings.Join(e.Seats, ", "))
}

func (e *SeatError) Unwrap() error { return e.Err }

func seatErr(err error, seats ...string) error {
	return &SeatError{Err: err, Seats: seats}
}

// internalErr marks a collaborator failure so it can never be mistaken for
// a business outcome.
func internalErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

// SeatsOf returns the seats carried by err, or nil.
func SeatsOf(err error) []string {
	var se *SeatError
	if errors.As(err, &se) {
		return se.Seats
	}
	return nil
}
