package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateMatch is returned when a match for the same job and
	// candidate already exists.
	ErrDuplicateMatch = errors.New("match already exists for job and candidate")

	// ErrNotFound is returned by updates that target a missing row.
	ErrNotFound = errors.New("record not found")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}
