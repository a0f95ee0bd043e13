package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/ist"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/targeting"
	"github.com/yigit/placement/internal/pkg/websocket"
)

// SeminarService manages seminars, their attendance sheets and ratings
type SeminarService interface {
	ListSeminars(ctx context.Context) ([]dto.SeminarResponse, error)
	GetSeminar(ctx context.Context, id int64) (*dto.SeminarResponse, error)
	CreateSeminar(ctx context.Context, req *dto.CreateSeminarRequest) (*dto.CreatedResponse, error)
	UpdateSeminar(ctx context.Context, id int64, req *dto.UpdateSeminarRequest) (*dto.SeminarResponse, error)
	DeleteSeminar(ctx context.Context, id int64) error
	GetAttendance(ctx context.Context, id int64, tab string) (*dto.AttendanceListResponse, error)
	UpdateAttendance(ctx context.Context, id int64, req *dto.AttendanceUpdateRequest) (*dto.AttendResponse, error)
	ScanAttendance(ctx context.Context, id int64, code string) (*dto.AttendResponse, error)
	GetCourseSemesters(ctx context.Context, id int64) ([]targeting.Tab, error)
	GetRatings(ctx context.Context, id int64) (*dto.RatingsResponse, error)
	GetRecipients(ctx context.Context, id int64) ([]models.Recipient, error)
}

// attendanceMarker records attendance and pushes the change to live
// clients, the event bus and the counters.
type attendanceMarker struct {
	repo      *repositories.AttendanceRepository
	hub       *websocket.Hub
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func (m attendanceMarker) mark(ctx context.Context, seminarID, studentID int64, status string, source models.AttendanceSource) error {
	if err := m.repo.Mark(ctx, seminarID, studentID, status, source); err != nil {
		return err
	}

	change := events.AttendanceMarkedEvent{
		SeminarID: seminarID,
		StudentID: studentID,
		Status:    status,
		Source:    string(source),
	}
	if m.hub != nil {
		m.hub.Broadcast(websocket.NewFrame(websocket.FrameAttendanceMarked, seminarID, change))
	}
	m.metrics.RecordAttendanceMarked(ctx, string(source), status)
	publish(ctx, m.publisher, m.logger, events.AttendanceMarked, change)

	m.logger.Debug().Int64("seminarID", seminarID).Int64("studentID", studentID).
		Str("status", status).Str("source", string(source)).Msg("Attendance marked")
	return nil
}

type seminarServiceImpl struct {
	db             *db.PostgresDB
	seminarRepo    *repositories.SeminarRepository
	attendanceRepo *repositories.AttendanceRepository
	studentRepo    *repositories.StudentRepository
	targets        targetChecker
	marker         attendanceMarker
	publisher      events.Publisher
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewSeminarService creates a new SeminarService
func NewSeminarService(
	database *db.PostgresDB,
	seminarRepo *repositories.SeminarRepository,
	attendanceRepo *repositories.AttendanceRepository,
	courseRepo *repositories.CourseRepository,
	studentRepo *repositories.StudentRepository,
	hub *websocket.Hub,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) SeminarService {
	return &seminarServiceImpl{
		db:             database,
		seminarRepo:    seminarRepo,
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		targets:        targetChecker{courseRepo: courseRepo, studentRepo: studentRepo},
		marker: attendanceMarker{
			repo:      attendanceRepo,
			hub:       hub,
			publisher: publisher,
			metrics:   m,
			logger:    logger,
		},
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// parseSeminarDate reads a submitted date as IST wall clock
func parseSeminarDate(raw string) (time.Time, error) {
	t, err := ist.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: seminar_date %q is not a valid date", apperrors.ErrValidationFailed, raw)
	}
	return t, nil
}

// ListSeminars returns every seminar with IST renderings and summaries
func (s *seminarServiceImpl) ListSeminars(ctx context.Context) ([]dto.SeminarResponse, error) {
	seminars, err := s.seminarRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing seminars: %w", err)
	}
	out := make([]dto.SeminarResponse, 0, len(seminars))
	for _, se := range seminars {
		out = append(out, seminarResponse(se))
	}
	return out, nil
}

// GetSeminar returns one seminar
func (s *seminarServiceImpl) GetSeminar(ctx context.Context, id int64) (*dto.SeminarResponse, error) {
	se, err := s.seminarRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := seminarResponse(se)
	return &resp, nil
}

// CreateSeminar fans a seminar out over its targets and opens a QR gate for each row
func (s *seminarServiceImpl) CreateSeminar(ctx context.Context, req *dto.CreateSeminarRequest) (*dto.CreatedResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidationFailed)
	}
	date, err := parseSeminarDate(req.SeminarDate)
	if err != nil {
		return nil, err
	}
	payload, err := s.targets.check(ctx, req.Payload)
	if err != nil {
		return nil, err
	}

	rows := fanOut(payload)
	ids := make([]int64, 0, len(rows))
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, t := range rows {
			se := &models.Seminar{
				Title:       title,
				Description: strings.TrimSpace(req.Description),
				SpeakerName: strings.TrimSpace(req.SpeakerName),
				SeminarDate: date,
				Targeting:   t,
			}
			if err := s.seminarRepo.Insert(ctx, tx, se, payload); err != nil {
				return err
			}
			if err := s.attendanceRepo.CreateQR(ctx, tx, se.ID, uuid.NewString()); err != nil {
				return err
			}
			ids = append(ids, se.ID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("title", title).Msg("Failed to create seminars")
		return nil, err
	}

	s.metrics.RecordSeminarsCreated(ctx, len(ids), string(payload.Mode))
	publish(ctx, s.publisher, s.logger, events.SeminarCreated, events.SeminarCreatedEvent{
		IDs:         ids,
		Title:       title,
		SeminarDate: ist.WallClock(date),
	})

	return &dto.CreatedResponse{Created: len(ids), IDs: ids}, nil
}

// UpdateSeminar edits the descriptive fields and date, keeping the targeting
func (s *seminarServiceImpl) UpdateSeminar(ctx context.Context, id int64, req *dto.UpdateSeminarRequest) (*dto.SeminarResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidationFailed)
	}
	date, err := parseSeminarDate(req.SeminarDate)
	if err != nil {
		return nil, err
	}

	se := &models.Seminar{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		SpeakerName: strings.TrimSpace(req.SpeakerName),
		SeminarDate: date,
	}
	if err := s.seminarRepo.Update(ctx, s.db.Pool, se, nil); err != nil {
		return nil, err
	}
	return s.GetSeminar(ctx, id)
}

// DeleteSeminar removes a seminar with its attendance and ratings
func (s *seminarServiceImpl) DeleteSeminar(ctx context.Context, id int64) error {
	return s.seminarRepo.Delete(ctx, id)
}

// GetAttendance returns every targeted student with their status, filtered by tab
func (s *seminarServiceImpl) GetAttendance(ctx context.Context, id int64, tab string) (*dto.AttendanceListResponse, error) {
	se, err := s.seminarRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sheet, err := s.attendanceRepo.Sheet(ctx, se)
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}

	briefs := make([]models.StudentBrief, len(sheet))
	for i, row := range sheet {
		briefs[i] = row.StudentBrief
	}

	filtered, err := targeting.FilterByTab(sheet, tab, func(row models.AttendanceRow) (int64, int) {
		return briefKey(row.StudentBrief)
	})
	if err != nil {
		return nil, err
	}

	present := 0
	for _, row := range filtered {
		if row.Status == models.AttendancePresent {
			present++
		}
	}
	if tab == "" {
		tab = targeting.AllTab
	}
	return &dto.AttendanceListResponse{
		Tab:          tab,
		Tabs:         tabsFor(se.CourseTargets, briefs),
		Students:     filtered,
		PresentCount: present,
		TotalCount:   len(filtered),
	}, nil
}

// UpdateAttendance is the manual Present/Absent toggle
func (s *seminarServiceImpl) UpdateAttendance(ctx context.Context, id int64, req *dto.AttendanceUpdateRequest) (*dto.AttendResponse, error) {
	if req.Status != models.AttendancePresent && req.Status != models.AttendanceAbsent {
		return nil, fmt.Errorf("%w: status must be Present or Absent", apperrors.ErrValidationFailed)
	}

	se, err := s.seminarRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTargeted(ctx, se.ID, student); err != nil {
		return nil, err
	}

	if err := s.marker.mark(ctx, se.ID, student.ID, req.Status, models.SourceManual); err != nil {
		return nil, err
	}
	return &dto.AttendResponse{SeminarID: se.ID, StudentID: student.ID, Status: req.Status}, nil
}

// ScanAttendance marks a student present from a scanned unique code or enrollment number
func (s *seminarServiceImpl) ScanAttendance(ctx context.Context, id int64, code string) (*dto.AttendResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", apperrors.ErrValidationFailed)
	}

	se, err := s.seminarRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.requireTargeted(ctx, se.ID, student); err != nil {
		return nil, err
	}

	if err := s.marker.mark(ctx, se.ID, student.ID, models.AttendancePresent, models.SourceScanner); err != nil {
		return nil, err
	}
	return &dto.AttendResponse{SeminarID: se.ID, StudentID: student.ID, Status: models.AttendancePresent}, nil
}

func (s *seminarServiceImpl) requireTargeted(ctx context.Context, seminarID int64, student *models.Student) error {
	ok, err := s.seminarRepo.IsTargeted(ctx, seminarID, student)
	if err != nil {
		return fmt.Errorf("error checking seminar targeting: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is not invited to seminar %d", apperrors.ErrNotTargeted, student.EnrollmentNumber, seminarID)
	}
	return nil
}

// GetCourseSemesters returns the tab strip of a seminar's attendance sheet
func (s *seminarServiceImpl) GetCourseSemesters(ctx context.Context, id int64) ([]targeting.Tab, error) {
	se, err := s.seminarRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(se.CourseTargets) > 0 {
		return targeting.Tabs(se.CourseTargets), nil
	}

	sheet, err := s.attendanceRepo.Sheet(ctx, se)
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}
	briefs := make([]models.StudentBrief, len(sheet))
	for i, row := range sheet {
		briefs[i] = row.StudentBrief
	}
	return tabsFor(nil, briefs), nil
}

// GetRatings returns the ratings of a seminar with their average
func (s *seminarServiceImpl) GetRatings(ctx context.Context, id int64) (*dto.RatingsResponse, error) {
	se, err := s.seminarRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.attendanceRepo.Ratings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading ratings: %w", err)
	}
	return &dto.RatingsResponse{Ratings: ratings, Average: se.AverageRating, Count: len(ratings)}, nil
}

// GetRecipients lists the selected students of a students-mode seminar
func (s *seminarServiceImpl) GetRecipients(ctx context.Context, id int64) ([]models.Recipient, error) {
	if _, err := s.seminarRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.seminarRepo.Recipients(ctx, id)
}
