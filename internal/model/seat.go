package model

import (
    "strconv"
    "strings"
)

// SeatStatus is the derived availability of a seat.  It is computed from the
// ledger and the lock store on every read and never stored.
type SeatStatus string

const (
    SeatAvailable SeatStatus = "available"
    SeatHeld      SeatStatus = "held"
    SeatBooked    SeatStatus = "booked"
)

// seatPrefix is the fixed prefix of every seat label.
const seatPrefix = "S"

// SeatView is one entry of a seat map.
type SeatView struct {
    SeatNumber string     `json:"seatNumber"`
    Status     SeatStatus `json:"status"`
}

// SeatLabel returns the label of the seat at the 1-based index i.
func SeatLabel(i int) string {
    return seatPrefix + strconv.Itoa(i)
}

// SeatIndex parses a label produced by SeatLabel.  Labels with leading zeros,
// signs or a zero index are rejected so that each seat has exactly one label.
func SeatIndex(label string) (int, bool) {
    digits, ok := strings.CutPrefix(label, seatPrefix)
    if !ok || digits == "" || digits[0] == '0' {
        return 0, false
    }
    for i := 0; i < len(digits); i++ {
        if digits[i] < '0' || digits[i] > '9' {
            return 0, false
        }
    }
    n, err := strconv.Atoi(digits)
    if err != nil {
        return 0, false
    }
    return n, true
}
