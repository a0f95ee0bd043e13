package helpers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

// ParseIDParam reads a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number", apperrors.ErrValidationFailed, name)
	}
	return id, nil
}

// OptionalInt64Query reads an optional int64 query parameter
func OptionalInt64Query(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", apperrors.ErrValidationFailed, name)
	}
	return &v, nil
}

// OptionalIntQuery reads an optional int query parameter
func OptionalIntQuery(c *gin.Context, name string) (*int, error) {
	v, err := OptionalInt64Query(c, name)
	if err != nil || v == nil {
		return nil, err
	}
	i := int(*v)
	return &i, nil
}

// NilIfBlank maps blank strings to nil so they are stored as NULL
func NilIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed value or the zero value
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
