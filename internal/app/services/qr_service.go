package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/qrcode"
	"github.com/yigit/placement/internal/pkg/websocket"
)

// QRConfig is the rotation cadence of seminar QR tokens
type QRConfig struct {
	RotationInterval time.Duration
	// TokenGrace is how long a rotated-out token is still accepted
	TokenGrace time.Duration
	BaseURL    string
}

// QRService runs the seminar QR attendance gate
type QRService interface {
	CurrentQR(ctx context.Context, seminarID int64) (*dto.QRResponse, error)
	SetActive(ctx context.Context, seminarID int64, active bool) (*dto.QRStatusResponse, error)
	Status(ctx context.Context, seminarID int64) (*dto.QRStatusResponse, error)
	QRImage(ctx context.Context, seminarID int64) ([]byte, error)
	Attend(ctx context.Context, token string, req *dto.AttendRequest) (*dto.AttendResponse, error)
}

type qrServiceImpl struct {
	seminarRepo    *repositories.SeminarRepository
	attendanceRepo *repositories.AttendanceRepository
	studentRepo    *repositories.StudentRepository
	marker         attendanceMarker
	hub            *websocket.Hub
	publisher      events.Publisher
	metrics        *metrics.Metrics
	config         QRConfig
	now            func() time.Time
	logger         zerolog.Logger
}

// NewQRService creates a new QRService
func NewQRService(
	seminarRepo *repositories.SeminarRepository,
	attendanceRepo *repositories.AttendanceRepository,
	studentRepo *repositories.StudentRepository,
	hub *websocket.Hub,
	publisher events.Publisher,
	m *metrics.Metrics,
	config QRConfig,
	logger zerolog.Logger,
) QRService {
	if config.TokenGrace <= 0 {
		config.TokenGrace = config.RotationInterval
	}
	return &qrServiceImpl{
		seminarRepo:    seminarRepo,
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		marker: attendanceMarker{
			repo:      attendanceRepo,
			hub:       hub,
			publisher: publisher,
			metrics:   m,
			logger:    logger,
		},
		hub:       hub,
		publisher: publisher,
		metrics:   m,
		config:    config,
		now:       time.Now,
		logger:    logger,
	}
}

func qrStatus(seminarID int64, active bool) *dto.QRStatusResponse {
	status := dto.QRStatusClosed
	if active {
		status = dto.QRStatusActive
	}
	return &dto.QRStatusResponse{SeminarID: seminarID, Active: active, Status: status}
}

// currentToken returns the gate of a seminar, rotating a stale token first
func (s *qrServiceImpl) currentToken(ctx context.Context, seminarID int64) (*models.SeminarQR, error) {
	if _, err := s.seminarRepo.GetByID(ctx, seminarID); err != nil {
		return nil, err
	}

	qr, err := s.attendanceRepo.EnsureQR(ctx, seminarID, uuid.NewString())
	if err != nil {
		return nil, err
	}

	staleBefore := s.now().Add(-s.config.RotationInterval)
	if qr.RotatedAt.After(staleBefore) {
		return qr, nil
	}
	return s.attendanceRepo.RotateQR(ctx, seminarID, uuid.NewString(), staleBefore)
}

// CurrentQR returns the token students scan, rotating it when older than the interval
func (s *qrServiceImpl) CurrentQR(ctx context.Context, seminarID int64) (*dto.QRResponse, error) {
	qr, err := s.currentToken(ctx, seminarID)
	if err != nil {
		return nil, err
	}

	status := qrStatus(seminarID, qr.Active)
	return &dto.QRResponse{
		SeminarID: seminarID,
		Token:     qr.Token,
		URL:       qrcode.AttendURL(s.config.BaseURL, qr.Token),
		Active:    qr.Active,
		Status:    status.Status,
		RotatedAt: qr.RotatedAt,
		ExpiresAt: qr.RotatedAt.Add(s.config.RotationInterval),
	}, nil
}

// SetActive opens or closes attendance for a seminar
func (s *qrServiceImpl) SetActive(ctx context.Context, seminarID int64, active bool) (*dto.QRStatusResponse, error) {
	if _, err := s.seminarRepo.GetByID(ctx, seminarID); err != nil {
		return nil, err
	}

	qr, err := s.attendanceRepo.SetQRActive(ctx, seminarID, active, uuid.NewString())
	if err != nil {
		return nil, err
	}

	status := qrStatus(seminarID, qr.Active)
	if s.hub != nil {
		s.hub.Broadcast(websocket.NewFrame(websocket.FrameQRStatus, seminarID, status))
	}
	publish(ctx, s.publisher, s.logger, events.QRStatusChanged, events.QRStatusChangedEvent{SeminarID: seminarID, Active: qr.Active})
	s.logger.Info().Int64("seminarID", seminarID).Bool("active", qr.Active).Msg("QR attendance toggled")
	return status, nil
}

// Status reports whether attendance is open without changing anything
func (s *qrServiceImpl) Status(ctx context.Context, seminarID int64) (*dto.QRStatusResponse, error) {
	se, err := s.seminarRepo.GetByID(ctx, seminarID)
	if err != nil {
		return nil, err
	}
	return qrStatus(seminarID, se.QRActive), nil
}

// QRImage renders the current attend URL as a PNG
func (s *qrServiceImpl) QRImage(ctx context.Context, seminarID int64) ([]byte, error) {
	qr, err := s.currentToken(ctx, seminarID)
	if err != nil {
		return nil, err
	}
	return qrcode.PNG(qrcode.AttendURL(s.config.BaseURL, qr.Token), qrcode.DefaultSize)
}

// Attend marks the scanning student present. The gate is checked before the
// credentials so a closed seminar rejects every attempt the same way.
func (s *qrServiceImpl) Attend(ctx context.Context, token string, req *dto.AttendRequest) (*dto.AttendResponse, error) {
	token = strings.TrimSpace(token)
	qr, err := s.attendanceRepo.FindQRByToken(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrQRTokenUnknown) {
			s.metrics.RecordQRScanRejected(ctx, "unknown")
		}
		return nil, err
	}
	if qr.Token != token && !qr.RotatedAt.Add(s.config.TokenGrace).After(s.now()) {
		s.metrics.RecordQRScanRejected(ctx, "expired")
		return nil, apperrors.ErrQRTokenUnknown
	}
	if !qr.Active {
		s.metrics.RecordQRScanRejected(ctx, "closed")
		return nil, apperrors.ErrQRClosed
	}

	student, err := s.authenticate(ctx, req)
	if err != nil {
		s.metrics.RecordQRScanRejected(ctx, "credentials")
		return nil, err
	}

	se, err := s.seminarRepo.GetByID(ctx, qr.SeminarID)
	if err != nil {
		return nil, err
	}
	ok, err := s.seminarRepo.IsTargeted(ctx, se.ID, student)
	if err != nil {
		return nil, fmt.Errorf("error checking seminar targeting: %w", err)
	}
	if !ok {
		s.metrics.RecordQRScanRejected(ctx, "not_targeted")
		return nil, apperrors.ErrNotTargeted
	}

	if err := s.marker.mark(ctx, se.ID, student.ID, models.AttendancePresent, models.SourceQR); err != nil {
		return nil, err
	}
	return &dto.AttendResponse{SeminarID: se.ID, StudentID: student.ID, Status: models.AttendancePresent}, nil
}

func (s *qrServiceImpl) authenticate(ctx context.Context, req *dto.AttendRequest) (*models.Student, error) {
	var (
		student *models.Student
		err     error
	)
	switch {
	case strings.TrimSpace(req.EnrollmentNumber) != "":
		student, err = s.studentRepo.GetByEnrollmentNumber(ctx, strings.TrimSpace(req.EnrollmentNumber))
	case strings.TrimSpace(req.UniqueCode) != "":
		student, err = s.studentRepo.GetByCode(ctx, req.UniqueCode)
	default:
		return nil, fmt.Errorf("%w: enrollment_number or unique_code is required", apperrors.ErrInvalidCredentials)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(student.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return student, nil
}
