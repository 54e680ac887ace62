// Package repositories contains the data access layer: one interface and one
// PostgreSQL implementation per entity. Visibility scoping is applied here,
// in the queries themselves, so an out-of-scope row never reaches the
// service layer in the first place.
package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique violation on the named
// constraint. A concurrent writer losing a uniqueness race lands here, so the
// caller can surface the same validation error the pre-check would have
// produced.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
