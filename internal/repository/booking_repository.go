package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/seat-commit-coordinator/internal/model"
)

// BookingRepo is the durable booking ledger.  Rows are only ever inserted;
// the unique (show_id, seat_label) key decides every ownership race.
type BookingRepo struct {
	db     *sql.DB
	driver string
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB, driver string) *BookingRepo {
	return &BookingRepo{db: db, driver: driver}
}

// FindByShowAndSeats returns the bookings of the given seats for a show.
// Seats without a booking are simply absent from the result.
func (r *BookingRepo) FindByShowAndSeats(ctx context.Context, showID uint64, labels []string) ([]model.Booking, error) {
	if len(labels) == 0 {
		return []model.Booking{}, nil
	}
	q := `SELECT id, show_id, seat_label, claimant_id, created_at FROM bookings WHERE show_id = ? AND seat_label IN (` + placeholders(len(labels)) + `)`
	args := make([]interface{}, 0, len(labels)+1)
	args = append(args, showID)
	for _, l := range labels {
		args = append(args, l)
	}
	rows, err := r.db.QueryContext(ctx, rebind(r.driver, q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0, len(labels))
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.ShowID, &b.SeatLabel, &b.ClaimantID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListSeatLabels returns the labels of every booked seat of a show.
func (r *BookingRepo) ListSeatLabels(ctx context.Context, showID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, rebind(r.driver, `SELECT seat_label FROM bookings WHERE show_id = ?`), showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// CountByShow returns the number of booked seats of a show.
func (r *BookingRepo) CountByShow(ctx context.Context, showID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, rebind(r.driver, `SELECT COUNT(*) FROM bookings WHERE show_id = ?`), showID).Scan(&n)
	return n, err
}

// InsertBatch persists all bookings in a single multi-row INSERT inside a
// transaction, so either every row is written or none is.  A unique key
// violation is reported as ErrDuplicateBooking.  Passing an empty slice
// has no effect and returns nil.
func (r *BookingRepo) InsertBatch(ctx context.Context, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	query := `INSERT INTO bookings (id, show_id, seat_label, claimant_id, created_at) VALUES `
	args := make([]interface{}, 0, len(bookings)*5)
	for i, b := range bookings {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, b.ID, b.ShowID, b.SeatLabel, b.ClaimantID, b.CreatedAt.UTC())
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, rebind(r.driver, query), args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateBooking, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateBooking, err)
		}
		return err
	}
	committed = true
	return nil
}
