package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(42, 2, 10)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPaginationInfo(5, 9, 10)
	assert.Equal(t, 1, clamped.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	page, size := ParsePaginationParams(testContext("/?page=2&limit=25"))
	assert.Equal(t, 2, page)
	assert.Equal(t, 25, size)

	page, size = ParsePaginationParams(testContext("/?page=-1&size=1000"))
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestOptionalQueries(t *testing.T) {
	c := testContext("/?course_id=4&semester=x")

	courseID, err := OptionalInt64Query(c, "course_id")
	require.NoError(t, err)
	assert.Equal(t, int64(4), *courseID)

	_, err = OptionalIntQuery(c, "semester")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	missing, err := OptionalIntQuery(c, "page")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNilIfBlank(t *testing.T) {
	assert.Nil(t, NilIfBlank("   "))
	assert.Equal(t, "OBC", *NilIfBlank(" OBC "))
	assert.Equal(t, 0, Deref[int](nil))
}
