// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// coordinator to distinguish business outcomes from I/O failures. For
// example, ErrDuplicateBooking signals that the ledger's unique
// (show, seat) constraint rejected an insert, while ErrShowNotFound
// indicates that the catalog has no such show.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrDuplicateBooking is returned by InsertBatch when at least one row
// violates the unique (show_id, seat_label) constraint. No row of the
// batch is persisted in that case.
var ErrDuplicateBooking = errors.New("duplicate booking")

const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

// isUniqueViolation recognises unique-constraint failures from both
// supported drivers.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == postgresUniqueViolate
	}
	return false
}
