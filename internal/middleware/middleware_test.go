package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorDetailFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.ErrSeminarNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrQRTokenUnknown, http.StatusNotFound, dto.ErrorCodeQRTokenUnknown},
		{fmt.Errorf("seminar 5: %w", apperrors.ErrQRClosed), http.StatusForbidden, dto.ErrorCodeQRClosed},
		{apperrors.ErrProfileIncomplete, http.StatusForbidden, dto.ErrorCodeProfileIncomplete},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{fmt.Errorf("%w: rating out of range", apperrors.ErrValidationFailed), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrApplicationClosed, http.StatusConflict, dto.ErrorCodeApplicationClosed},
		{apperrors.ErrInsufficientStock, http.StatusConflict, dto.ErrorCodeInsufficientStock},
		{apperrors.NewConflictError("name taken"), http.StatusConflict, dto.ErrorCodeConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, detail := ErrorDetailFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}

	_, detail := ErrorDetailFor(apperrors.NewConflictError("name taken"))
	assert.Equal(t, "name taken", detail.Message)
}

func TestHandleAPIErrorBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.ErrQRClosed)

	require.Equal(t, http.StatusForbidden, w.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Attendance is closed for this seminar", body.Message)
	assert.Equal(t, dto.ErrorCodeQRClosed, body.Error.Code)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *pkgauth.JWTService) {
	t.Helper()
	jwtSvc := pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour})
	mw := NewAuthMiddleware(jwtSvc)

	r := gin.New()
	r.Use(mw.JWTAuth())
	r.GET("/admin", mw.RoleRequired("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/students/:id", mw.SelfOrAdmin("id"), func(c *gin.Context) {
		session, ok := SessionFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, session)
	})
	return r, jwtSvc
}

func doRequest(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, jwtSvc := newAuthRouter(t)

	adminToken, _, err := jwtSvc.GenerateToken(pkgauth.Session{UserID: 1, Kind: pkgauth.KindStaff, Role: "admin"})
	require.NoError(t, err)
	studentToken, _, err := jwtSvc.GenerateToken(pkgauth.Session{UserID: 9, Kind: pkgauth.KindStudent, Role: "student"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/admin", "junk").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "/admin", adminToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/admin", studentToken).Code)

	assert.Equal(t, http.StatusOK, doRequest(r, "/students/9", studentToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/students/10", studentToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "/students/10", adminToken).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, "/students/abc", adminToken).Code)

	// websocket clients pass the token as a query parameter
	assert.Equal(t, http.StatusOK, doRequest(r, "/admin?token="+adminToken, "").Code)
}

func TestBindJSONReportsJSONFieldNames(t *testing.T) {
	type body struct {
		StudentID int64  `json:"student_id" binding:"required,gt=0"`
		Status    string `json:"status" binding:"required,oneof=Present Absent"`
	}

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var b body
		if !BindJSON(c, &b) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"student_id": 3, "status": "Late"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "status", resp.Error.Field)
	assert.Equal(t, "status must be one of: Present, Absent", resp.Message)
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
