package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories translate
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
)

func pgCode(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsUniqueViolation reports a unique constraint failure
func IsUniqueViolation(err error) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == UniqueViolation
}

// IsDuplicateConstraintError checks for a unique violation on a specific constraint
func IsDuplicateConstraintError(err error, constraintName string) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == UniqueViolation && pgErr.ConstraintName == constraintName
}

// IsForeignKeyViolation reports a reference to a missing row
func IsForeignKeyViolation(err error) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == ForeignKeyViolation
}

// IsCheckViolation reports a failed CHECK constraint, optionally a specific one
func IsCheckViolation(err error, constraintName string) bool {
	pgErr, ok := pgCode(err)
	if !ok || pgErr.Code != CheckViolation {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}
