package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err comes from a unique index. When
// constraint is set the violated constraint name must also match.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constraint == "" || strings.Contains(err.Error(), constraint)
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && pgxErr.Code == pgUniqueViolation {
		return constraint == "" || pgxErr.ConstraintName == constraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return constraint == "" || pqErr.Constraint == constraint
	}

	// sqlite: "UNIQUE constraint failed: users.username"
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return constraint == "" || strings.Contains(msg, constraint)
	}
	return false
}

// IsNotFound reports whether err is GORM's missing record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
