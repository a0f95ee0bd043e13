package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fakes embed the service interface; calling a method that is not overridden panics.

type fakeQRService struct {
	services.QRService
	attendErr error
	gotToken  string
}

func (f *fakeQRService) Attend(_ context.Context, token string, _ *dto.AttendRequest) (*dto.AttendResponse, error) {
	f.gotToken = token
	if f.attendErr != nil {
		return nil, f.attendErr
	}
	return &dto.AttendResponse{SeminarID: 5, StudentID: 9, Status: models.AttendancePresent}, nil
}

func (f *fakeQRService) QRImage(context.Context, int64) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

type fakeCatalogService struct {
	services.CatalogService
	pdf []byte
	err error
}

func (f *fakeCatalogService) HallTickets(_ context.Context, examID int64) ([]byte, *models.Exam, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.pdf, &models.Exam{ID: examID}, nil
}

type fakeStationeryService struct {
	services.StationeryService
	reviewErr  error
	gotStaffID int64
	gotAction  string
}

func (f *fakeStationeryService) Review(_ context.Context, staffID, id int64, req *dto.ReviewRequest) (*models.StationeryRequest, error) {
	f.gotStaffID = staffID
	f.gotAction = req.Action
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return &models.StationeryRequest{ID: id, Status: models.RequestApproved}, nil
}

type fakePortalService struct {
	services.PortalService
	applyErr     error
	gotStudentID int64
}

func (f *fakePortalService) Apply(_ context.Context, studentID, companyID int64) (*dto.ApplicationResponse, error) {
	f.gotStudentID = studentID
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	return &dto.ApplicationResponse{CompanyID: companyID, StudentID: studentID, AppliedAt: time.Now()}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

// withSession stands in for the JWT middleware
func withSession(session pkgauth.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetSession(c, session)
		c.Next()
	}
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestQRController_Attend(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{"present", nil, `{"enrollment_number":"ENR001","password":"x"}`, http.StatusOK},
		{"closed with credentials", apperrors.ErrQRClosed, `{"enrollment_number":"ENR001","password":"x"}`, http.StatusForbidden},
		{"closed without credentials", apperrors.ErrQRClosed, `{}`, http.StatusForbidden},
		{"unknown token", apperrors.ErrQRTokenUnknown, `{}`, http.StatusNotFound},
		{"bad credentials", apperrors.ErrInvalidCredentials, `{"unique_code":"X","password":"y"}`, http.StatusUnauthorized},
		{"not targeted", apperrors.ErrNotTargeted, `{"unique_code":"X","password":"y"}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeQRService{attendErr: tt.err}
			router := gin.New()
			router.POST("/api/qr/:token/attend", NewQRController(svc, zerolog.Nop()).Attend)

			w := perform(router, http.MethodPost, "/api/qr/tok-123/attend", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "tok-123", svc.gotToken)
		})
	}
}

func TestQRController_AttendWithoutBody(t *testing.T) {
	svc := &fakeQRService{attendErr: apperrors.ErrQRClosed}
	router := gin.New()
	router.POST("/api/qr/:token/attend", NewQRController(svc, zerolog.Nop()).Attend)

	w := perform(router, http.MethodPost, "/api/qr/tok-123/attend", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "tok-123", svc.gotToken)

	w = perform(router, http.MethodPost, "/api/qr/tok-123/attend", `{"enrollment_number":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQRController_Image(t *testing.T) {
	router := gin.New()
	router.GET("/api/seminars/:id/qr/image", NewQRController(&fakeQRService{}, zerolog.Nop()).Image)

	w := perform(router, http.MethodGet, "/api/seminars/5/qr/image", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCatalogController_HallTickets(t *testing.T) {
	t.Run("pdf", func(t *testing.T) {
		router := gin.New()
		router.GET("/exams/:id/hall-tickets-all", NewCatalogController(&fakeCatalogService{pdf: []byte("%PDF-1.3")}, nil).HallTickets)

		w := perform(router, http.MethodGet, "/exams/12/hall-tickets-all", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "hall-tickets-12.pdf")
		assert.Equal(t, "%PDF-1.3", w.Body.String())
	})

	t.Run("unknown exam", func(t *testing.T) {
		router := gin.New()
		router.GET("/exams/:id/hall-tickets-all", NewCatalogController(&fakeCatalogService{err: apperrors.ErrExamNotFound}, nil).HallTickets)

		w := perform(router, http.MethodGet, "/exams/12/hall-tickets-all", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrorCodeResourceNotFound, decodeError(t, w).Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		router := gin.New()
		router.GET("/exams/:id/hall-tickets-all", NewCatalogController(&fakeCatalogService{}, nil).HallTickets)

		w := perform(router, http.MethodGet, "/exams/abc/hall-tickets-all", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStationeryController_Review(t *testing.T) {
	staff := pkgauth.Session{UserID: 3, Kind: pkgauth.KindStaff, Role: string(models.RoleTechnical)}

	tests := []struct {
		name   string
		err    error
		body   string
		status int
		code   dto.ErrorCode
	}{
		{"approved", nil, `{"action":"approve"}`, http.StatusOK, ""},
		{"insufficient stock", apperrors.ErrInsufficientStock, `{"action":"approve"}`, http.StatusConflict, dto.ErrorCodeInsufficientStock},
		{"already reviewed", apperrors.ErrInvalidTransition, `{"action":"reject","rejection_reason":"late"}`, http.StatusConflict, dto.ErrorCodeInvalidTransition},
		{"unknown action", nil, `{"action":"delete"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeStationeryService{reviewErr: tt.err}
			router := gin.New()
			router.PUT("/requests/:id/review", withSession(staff), NewStationeryController(svc).Review)

			w := perform(router, http.MethodPut, "/requests/4/review", tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
			}
			if tt.status != http.StatusBadRequest {
				assert.Equal(t, int64(3), svc.gotStaffID)
			}
		})
	}
}

func TestPortalController_Apply(t *testing.T) {
	student := pkgauth.Session{UserID: 9, Kind: pkgauth.KindStudent, Role: string(models.RoleStudent)}

	t.Run("created", func(t *testing.T) {
		svc := &fakePortalService{}
		router := gin.New()
		router.POST("/apply", withSession(student), NewPortalController(svc).Apply)

		w := perform(router, http.MethodPost, "/apply", `{"company_id":4}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, int64(9), svc.gotStudentID)
	})

	t.Run("profile incomplete", func(t *testing.T) {
		svc := &fakePortalService{applyErr: apperrors.ErrProfileIncomplete}
		router := gin.New()
		router.POST("/apply", withSession(student), NewPortalController(svc).Apply)

		w := perform(router, http.MethodPost, "/apply", `{"company_id":4}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrorCodeProfileIncomplete, decodeError(t, w).Error.Code)
	})

	t.Run("staff session", func(t *testing.T) {
		svc := &fakePortalService{}
		router := gin.New()
		router.POST("/apply", withSession(pkgauth.Session{UserID: 1, Kind: pkgauth.KindStaff, Role: "admin"}), NewPortalController(svc).Apply)

		w := perform(router, http.MethodPost, "/apply", `{"company_id":4}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Zero(t, svc.gotStudentID)
	})
}

func TestHealthController(t *testing.T) {
	router := gin.New()
	router.GET("/ping", NewHealthController(fakePinger{}).Ping)
	router.GET("/ok", NewHealthController(fakePinger{}).Health)
	router.GET("/down", NewHealthController(fakePinger{err: errors.New("connection refused")}).Health)

	w := perform(router, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = perform(router, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrorCodeDatabaseError, decodeError(t, w).Error.Code)
}
