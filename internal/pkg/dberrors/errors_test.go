package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassifiers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: UniqueViolation, ConstraintName: "courses_name_key"})
	fk := &pgconn.PgError{Code: ForeignKeyViolation}
	check := &pgconn.PgError{Code: CheckViolation, ConstraintName: "stationery_items_available_quantity_check"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsDuplicateConstraintError(unique, "courses_name_key"))
	assert.False(t, IsDuplicateConstraintError(unique, "interests_name_key"))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsCheckViolation(check, ""))
	assert.True(t, IsCheckViolation(check, "stationery_items_available_quantity_check"))
	assert.False(t, IsCheckViolation(errors.New("plain"), ""))
}
