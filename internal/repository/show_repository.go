package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/seat-commit-coordinator/internal/model"
)

// ShowRepo is the read-only show catalog.
type ShowRepo struct {
	db     *sql.DB
	driver string
}

// NewShowRepo constructs a ShowRepo with the given DB handle and driver name.
func NewShowRepo(db *sql.DB, driver string) *ShowRepo {
	return &ShowRepo{db: db, driver: driver}
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	q := rebind(r.driver, `SELECT id, title, starts_at, total_seats, created_at FROM shows WHERE id = ?`)
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Title, &s.StartsAt, &s.TotalSeats, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}
