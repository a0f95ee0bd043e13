package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/email"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/qrcode"
)

// StudentBroadcastLimit caps the broadcasts shown to students
const StudentBroadcastLimit = 20

// Dashboard section names reported in DashboardResponse.Degraded
const (
	SectionMessages   = "messages"
	SectionCompanies  = "companies"
	SectionSeminars   = "seminars"
	SectionBroadcasts = "broadcasts"
)

// PortalService serves the student-facing pages
type PortalService interface {
	GetProfile(ctx context.Context, studentID int64) (*dto.StudentProfileResponse, error)
	UpdateProfile(ctx context.Context, studentID int64, req *dto.ProfileUpdateRequest) (*dto.StudentProfileResponse, error)
	ListMessages(ctx context.Context, studentID int64) ([]dto.MessageResponse, error)
	ListCompanies(ctx context.Context, studentID int64) ([]dto.StudentCompanyResponse, error)
	ListSeminars(ctx context.Context, studentID int64) ([]dto.StudentSeminarResponse, error)
	ListBroadcasts(ctx context.Context) ([]models.Broadcast, error)
	Dashboard(ctx context.Context, studentID int64) (*dto.DashboardResponse, error)
	Apply(ctx context.Context, studentID, companyID int64) (*dto.ApplicationResponse, error)
	RateSeminar(ctx context.Context, studentID, seminarID int64, req *dto.RatingRequest) (*models.Rating, error)
	StudentQRCode(ctx context.Context, studentID int64) ([]byte, error)
}

type portalServiceImpl struct {
	studentRepo     *repositories.StudentRepository
	companyRepo     *repositories.CompanyRepository
	messageRepo     *repositories.MessageRepository
	seminarRepo     *repositories.SeminarRepository
	attendanceRepo  *repositories.AttendanceRepository
	broadcastRepo   *repositories.BroadcastRepository
	emailService    email.EmailService
	publisher       events.Publisher
	metrics         *metrics.Metrics
	closingSoonDays int
	now             func() time.Time
	logger          zerolog.Logger
}

// NewPortalService creates a new PortalService
func NewPortalService(
	repos *repositories.Repositories,
	emailService email.EmailService,
	publisher events.Publisher,
	m *metrics.Metrics,
	closingSoonDays int,
	logger zerolog.Logger,
) PortalService {
	return &portalServiceImpl{
		studentRepo:     repos.StudentRepository,
		companyRepo:     repos.CompanyRepository,
		messageRepo:     repos.MessageRepository,
		seminarRepo:     repos.SeminarRepository,
		attendanceRepo:  repos.AttendanceRepository,
		broadcastRepo:   repos.BroadcastRepository,
		emailService:    emailService,
		publisher:       publisher,
		metrics:         m,
		closingSoonDays: closingSoonDays,
		now:             time.Now,
		logger:          logger,
	}
}

// NeedsProfileCompletion reports whether caste or gender is still blank
func NeedsProfileCompletion(student *models.Student) bool {
	return !student.HasCaste() || !student.HasGender()
}

func profileResponse(student *models.Student) dto.StudentProfileResponse {
	needs := NeedsProfileCompletion(student)
	return dto.StudentProfileResponse{
		Student:                   student,
		ProfileComplete:           !needs,
		RequiresProfileCompletion: needs,
	}
}

// requireCompleteProfile loads a student and rejects writes until the profile is complete
func (s *portalServiceImpl) requireCompleteProfile(ctx context.Context, studentID int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if NeedsProfileCompletion(student) {
		return nil, apperrors.ErrProfileIncomplete
	}
	return student, nil
}

// GetProfile returns the student with the profile gate flags
func (s *portalServiceImpl) GetProfile(ctx context.Context, studentID int64) (*dto.StudentProfileResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	resp := profileResponse(student)
	return &resp, nil
}

// UpdateProfile completes caste and gender
func (s *portalServiceImpl) UpdateProfile(ctx context.Context, studentID int64, req *dto.ProfileUpdateRequest) (*dto.StudentProfileResponse, error) {
	caste := strings.TrimSpace(req.Caste)
	gender := strings.TrimSpace(req.Gender)
	if caste == "" || gender == "" {
		return nil, fmt.Errorf("%w: caste and gender are required", apperrors.ErrValidationFailed)
	}
	if !validGender(gender) {
		return nil, fmt.Errorf("%w: gender must be one of %s", apperrors.ErrValidationFailed, strings.Join(models.Genders, ", "))
	}

	if err := s.studentRepo.UpdateProfile(ctx, studentID, caste, gender); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, studentID)
}

// ListMessages returns the messages that target a student
func (s *portalServiceImpl) ListMessages(ctx context.Context, studentID int64) ([]dto.MessageResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.messagesFor(ctx, student)
}

func (s *portalServiceImpl) messagesFor(ctx context.Context, student *models.Student) ([]dto.MessageResponse, error) {
	messages, err := s.messageRepo.ListForStudent(ctx, student, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageResponse(m))
	}
	return out, nil
}

// ListCompanies returns the openings that target a student with their application state
func (s *portalServiceImpl) ListCompanies(ctx context.Context, studentID int64) ([]dto.StudentCompanyResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	companies, _, err := s.companiesFor(ctx, student)
	return companies, err
}

// companiesFor also returns how many openings the student applied to, targeted or not
func (s *portalServiceImpl) companiesFor(ctx context.Context, student *models.Student) ([]dto.StudentCompanyResponse, int, error) {
	companies, err := s.companyRepo.ListForStudent(ctx, student)
	if err != nil {
		return nil, 0, err
	}
	applied, err := s.companyRepo.AppliedCompanyIDs(ctx, student.ID)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	out := make([]dto.StudentCompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, dto.StudentCompanyResponse{
			CompanyResponse: companyResponse(c, now, s.closingSoonDays),
			HasApplied:      applied[c.ID],
		})
	}
	return out, len(applied), nil
}

// ListSeminars returns the seminars that target a student with attendance and rating
func (s *portalServiceImpl) ListSeminars(ctx context.Context, studentID int64) ([]dto.StudentSeminarResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.seminarsFor(ctx, student)
}

func (s *portalServiceImpl) seminarsFor(ctx context.Context, student *models.Student) ([]dto.StudentSeminarResponse, error) {
	seminars, err := s.seminarRepo.ListForStudent(ctx, student)
	if err != nil {
		return nil, err
	}
	statuses, err := s.attendanceRepo.StatusesForStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.attendanceRepo.RatingsByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.StudentSeminarResponse, 0, len(seminars))
	for _, se := range seminars {
		status, ok := statuses[se.ID]
		if !ok {
			status = models.AttendanceAbsent
		}
		row := dto.StudentSeminarResponse{SeminarResponse: seminarResponse(se), AttendanceStatus: status}
		if r, ok := ratings[se.ID]; ok {
			r := r
			row.MyRating = &r
		}
		out = append(out, row)
	}
	return out, nil
}

// ListBroadcasts returns the latest notices
func (s *portalServiceImpl) ListBroadcasts(ctx context.Context) ([]models.Broadcast, error) {
	return s.broadcastRepo.List(ctx, StudentBroadcastLimit)
}

// Dashboard loads every section of the student home page concurrently. A
// failing section is left empty and named in Degraded.
func (s *portalServiceImpl) Dashboard(ctx context.Context, studentID int64) (*dto.DashboardResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Profile:    profileResponse(student),
		Messages:   []dto.MessageResponse{},
		Companies:  []dto.StudentCompanyResponse{},
		Seminars:   []dto.StudentSeminarResponse{},
		Broadcasts: []models.Broadcast{},
		Degraded:   []string{},
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		appliedCount int
	)
	degrade := func(section string, err error) {
		s.logger.Warn().Err(err).Int64("studentID", studentID).Str("section", section).Msg("Dashboard section failed")
		mu.Lock()
		resp.Degraded = append(resp.Degraded, section)
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		messages, err := s.messagesFor(ctx, student)
		if err != nil {
			degrade(SectionMessages, err)
			return
		}
		resp.Messages = messages
	}()
	go func() {
		defer wg.Done()
		companies, applied, err := s.companiesFor(ctx, student)
		if err != nil {
			degrade(SectionCompanies, err)
			return
		}
		resp.Companies = companies
		appliedCount = applied
	}()
	go func() {
		defer wg.Done()
		seminars, err := s.seminarsFor(ctx, student)
		if err != nil {
			degrade(SectionSeminars, err)
			return
		}
		resp.Seminars = seminars
	}()
	go func() {
		defer wg.Done()
		broadcasts, err := s.broadcastRepo.List(ctx, StudentBroadcastLimit)
		if err != nil {
			degrade(SectionBroadcasts, err)
			return
		}
		resp.Broadcasts = broadcasts
	}()
	wg.Wait()

	resp.Stats = DashboardStats(resp.Seminars, s.now())
	resp.Stats.ApplicationCount = appliedCount
	return resp, nil
}

// DashboardStats computes attendance over seminars already held and the
// average rating the student gave.
func DashboardStats(seminars []dto.StudentSeminarResponse, now time.Time) dto.DashboardStats {
	var stats dto.DashboardStats
	ratingSum, rated := 0, 0
	for _, se := range seminars {
		if se.MyRating != nil {
			ratingSum += *se.MyRating
			rated++
		}
		if !se.Seminar.SeminarDate.Before(now) {
			continue
		}
		stats.PastSeminars++
		if se.AttendanceStatus == models.AttendancePresent {
			stats.SeminarsAttended++
		}
	}
	if stats.PastSeminars > 0 {
		pct := float64(stats.SeminarsAttended) * 100 / float64(stats.PastSeminars)
		stats.AttendancePercentage = float64(int(pct*10+0.5)) / 10
	}
	if rated > 0 {
		avg := float64(ratingSum) / float64(rated)
		stats.AverageGivenRating = &avg
	}
	return stats
}

// Apply submits an application for a targeted opening before its deadline
func (s *portalServiceImpl) Apply(ctx context.Context, studentID, companyID int64) (*dto.ApplicationResponse, error) {
	student, err := s.requireCompleteProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ok, err := s.companyRepo.IsTargeted(ctx, companyID, student)
	if err != nil {
		return nil, fmt.Errorf("error checking opening targeting: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrNotTargeted
	}
	if info := companyResponse(company, s.now(), s.closingSoonDays).DeadlineStatus; !info.CanApply {
		return nil, apperrors.ErrApplicationClosed
	}

	appliedAt, err := s.companyRepo.Apply(ctx, companyID, studentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", studentID).Int64("companyID", companyID).Msg("Application submitted")
	s.metrics.RecordApplicationSubmitted(ctx)
	publish(ctx, s.publisher, s.logger, events.ApplicationSubmitted, events.ApplicationSubmittedEvent{
		CompanyID: companyID,
		StudentID: studentID,
	})
	if s.emailService != nil && student.Email != "" {
		go func() {
			if err := s.emailService.SendApplicationConfirmation(student.Email, student.FullName, company.Name, company.Position); err != nil {
				s.logger.Warn().Err(err).Int64("studentID", studentID).Msg("Failed to send application confirmation")
			}
		}()
	}

	return &dto.ApplicationResponse{CompanyID: companyID, StudentID: studentID, AppliedAt: appliedAt}, nil
}

// RateSeminar stores the rating of a seminar the student attended
func (s *portalServiceImpl) RateSeminar(ctx context.Context, studentID, seminarID int64, req *dto.RatingRequest) (*models.Rating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrValidationFailed)
	}

	student, err := s.requireCompleteProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.seminarRepo.GetByID(ctx, seminarID); err != nil {
		return nil, err
	}
	ok, err := s.seminarRepo.IsTargeted(ctx, seminarID, student)
	if err != nil {
		return nil, fmt.Errorf("error checking seminar targeting: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrNotTargeted
	}
	status, err := s.attendanceRepo.Status(ctx, seminarID, studentID)
	if err != nil {
		return nil, err
	}
	if status != models.AttendancePresent {
		return nil, apperrors.ErrNotAttended
	}

	rating := &models.Rating{
		SeminarID: seminarID,
		StudentID: studentID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.attendanceRepo.UpsertRating(ctx, rating); err != nil {
		return nil, err
	}
	rating.StudentName = student.FullName
	return rating, nil
}

// StudentQRCode renders the student's personal code for the scanner path
func (s *portalServiceImpl) StudentQRCode(ctx context.Context, studentID int64) ([]byte, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	code := student.EnrollmentNumber
	if student.UniqueCode != nil && *student.UniqueCode != "" {
		code = *student.UniqueCode
	}
	return qrcode.PNG(code, qrcode.DefaultSize)
}
