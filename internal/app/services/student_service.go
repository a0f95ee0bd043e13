package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/email"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// Student code format: the prefix followed by eight upper-case hex digits
const (
	UniqueCodePrefix = "STU"
	uniqueCodeDigits = 8
	maxInterests     = 5
	codeAttempts     = 5
)

// StudentService handles admin student management
type StudentService interface {
	ListStudents(ctx context.Context, filter dto.StudentFilter) (*dto.PagedResponse[*models.Student], error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	CreateStudent(ctx context.Context, req *dto.StudentRequest) (*dto.StudentCreatedResponse, error)
	UpdateStudent(ctx context.Context, id int64, req *dto.StudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
	GetStudentDetails(ctx context.Context, ids []int64) ([]*models.Student, error)
	SemesterCounts(ctx context.Context) ([]models.SemesterCount, error)
	AssignCodesRetroactive(ctx context.Context) (*dto.CountResponse, error)
	ResetPassword(ctx context.Context, id int64) (*dto.PasswordResetResponse, error)
}

type studentServiceImpl struct {
	db           *db.PostgresDB
	studentRepo  *repositories.StudentRepository
	courseRepo   *repositories.CourseRepository
	emailService email.EmailService
	logger       zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	database *db.PostgresDB,
	studentRepo *repositories.StudentRepository,
	courseRepo *repositories.CourseRepository,
	emailService email.EmailService,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		db:           database,
		studentRepo:  studentRepo,
		courseRepo:   courseRepo,
		emailService: emailService,
		logger:       logger,
	}
}

// GenerateUniqueCode returns a new personal student code such as "STU4F1A09BC"
func GenerateUniqueCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return UniqueCodePrefix + strings.ToUpper(hex[:uniqueCodeDigits])
}

// ValidateSemesters checks 1 <= admission <= current <= total
func ValidateSemesters(admission, current, total int) error {
	if admission < 1 || current < 1 {
		return fmt.Errorf("%w: semesters start at 1", apperrors.ErrValidationFailed)
	}
	if admission > current {
		return fmt.Errorf("%w: admission_semester cannot be after current_semester", apperrors.ErrValidationFailed)
	}
	if current > total {
		return fmt.Errorf("%w: current_semester exceeds the course's %d semesters", apperrors.ErrValidationFailed, total)
	}
	return nil
}

// studentFromRequest validates req against the stored course and interests
func (s *studentServiceImpl) studentFromRequest(ctx context.Context, req *dto.StudentRequest) (*models.Student, error) {
	st := &models.Student{
		FullName:          strings.TrimSpace(req.FullName),
		EnrollmentNumber:  strings.TrimSpace(req.EnrollmentNumber),
		CourseID:          req.CourseID,
		Email:             strings.TrimSpace(req.Email),
		PhoneNumber:       strings.TrimSpace(req.PhoneNumber),
		ParentPhoneNumber: strings.TrimSpace(req.ParentPhoneNumber),
		AdmissionSemester: req.AdmissionSemester,
		CurrentSemester:   req.CurrentSemester,
		ResumeLink:        strings.TrimSpace(req.ResumeLink),
		AgreementLink:     strings.TrimSpace(req.AgreementLink),
		FeeCategory:       models.FeeCategory(strings.ToUpper(strings.TrimSpace(string(req.FeeCategory)))),
		Caste:             helpers.NilIfBlank(helpers.Deref(req.Caste)),
		Gender:            helpers.NilIfBlank(helpers.Deref(req.Gender)),
	}
	if st.FullName == "" || st.EnrollmentNumber == "" {
		return nil, fmt.Errorf("%w: full_name and enrollment_number are required", apperrors.ErrValidationFailed)
	}
	if st.FeeCategory == "" {
		st.FeeCategory = models.FeeGeneral
	}
	if !st.FeeCategory.Valid() {
		return nil, fmt.Errorf("%w: fee_category must be one of GENERAL, SCHOLARSHIP, FREESHIP, EWS", apperrors.ErrValidationFailed)
	}
	if st.Gender != nil && !validGender(*st.Gender) {
		return nil, fmt.Errorf("%w: gender must be one of %s", apperrors.ErrValidationFailed, strings.Join(models.Genders, ", "))
	}

	course, err := s.courseRepo.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	st.CourseName = course.Name
	if err := ValidateSemesters(st.AdmissionSemester, st.CurrentSemester, course.TotalSemesters); err != nil {
		return nil, err
	}

	interests := positiveUniqueIDs(req.InterestIDs)
	if len(interests) == 0 || len(interests) > maxInterests {
		return nil, fmt.Errorf("%w: select between 1 and %d interests", apperrors.ErrValidationFailed, maxInterests)
	}
	n, err := s.courseRepo.CountInterests(ctx, interests)
	if err != nil {
		return nil, fmt.Errorf("error checking interests: %w", err)
	}
	if n != len(interests) {
		return nil, fmt.Errorf("%w: one or more interests do not exist", apperrors.ErrValidationFailed)
	}
	st.InterestIDs = interests

	return st, nil
}

func positiveUniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func validGender(g string) bool {
	for _, allowed := range models.Genders {
		if g == allowed {
			return true
		}
	}
	return false
}

// ListStudents returns one page of students
func (s *studentServiceImpl) ListStudents(ctx context.Context, filter dto.StudentFilter) (*dto.PagedResponse[*models.Student], error) {
	switch models.PlacementStatus(filter.PlacementStatus) {
	case "", models.PlacementActive, models.PlacementPlaced:
	default:
		return nil, fmt.Errorf("%w: placement_status must be Active or Placed", apperrors.ErrValidationFailed)
	}

	students, total, err := s.studentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return &dto.PagedResponse[*models.Student]{
		Items:      students,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}, nil
}

// GetStudent returns one student
func (s *studentServiceImpl) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// CreateStudent validates and inserts a student. A password is generated
// when none is supplied; either way it is returned once.
func (s *studentServiceImpl) CreateStudent(ctx context.Context, req *dto.StudentRequest) (*dto.StudentCreatedResponse, error) {
	st, err := s.studentFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	password := strings.TrimSpace(helpers.Deref(req.Password))
	if password == "" {
		if password, err = auth.GeneratePassword(); err != nil {
			return nil, fmt.Errorf("error generating password: %w", err)
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	st.PasswordHash = hash
	st.PlacementStatus = models.PlacementActive
	code := GenerateUniqueCode()
	st.UniqueCode = &code

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.studentRepo.Create(ctx, tx, st)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", st.ID).Str("enrollment", st.EnrollmentNumber).Msg("Student created")
	created, err := s.studentRepo.GetByID(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	return &dto.StudentCreatedResponse{Student: created, InitialPassword: password}, nil
}

// UpdateStudent rewrites a student. The password is re-hashed only when supplied.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, req *dto.StudentRequest) (*models.Student, error) {
	if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	st, err := s.studentFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	st.ID = id

	var hash *string
	if password := strings.TrimSpace(helpers.Deref(req.Password)); password != "" {
		h, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		hash = &h
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.studentRepo.Update(ctx, tx, st, hash)
	})
	if err != nil {
		return nil, err
	}
	return s.studentRepo.GetByID(ctx, id)
}

// DeleteStudent removes a student
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// GetStudentDetails is the batch id lookup used by recipient pickers
func (s *studentServiceImpl) GetStudentDetails(ctx context.Context, ids []int64) ([]*models.Student, error) {
	ids = positiveUniqueIDs(ids)
	if len(ids) == 0 {
		return []*models.Student{}, nil
	}
	return s.studentRepo.GetByIDs(ctx, ids)
}

// SemesterCounts returns the number of students per course and current semester
func (s *studentServiceImpl) SemesterCounts(ctx context.Context) ([]models.SemesterCount, error) {
	return s.studentRepo.SemesterCounts(ctx)
}

// AssignCodesRetroactive gives a unique code to every student that lacks one
func (s *studentServiceImpl) AssignCodesRetroactive(ctx context.Context) (*dto.CountResponse, error) {
	ids, err := s.studentRepo.IDsWithoutCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing students without code: %w", err)
	}

	var assigned int64
	for _, id := range ids {
		ok, err := s.assignCode(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			assigned++
		}
	}

	s.logger.Info().Int64("assigned", assigned).Msg("Unique codes assigned")
	return &dto.CountResponse{Count: assigned}, nil
}

func (s *studentServiceImpl) assignCode(ctx context.Context, id int64) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		ok, err := s.studentRepo.SetUniqueCode(ctx, id, GenerateUniqueCode())
		if err == nil {
			return ok, nil
		}
		if !apperrors.Is(err, apperrors.ErrConflict) {
			return false, err
		}
		lastErr = err
	}
	return false, fmt.Errorf("could not assign a unique code to student %d: %w", id, lastErr)
}

// ResetPassword generates a new password, stores its hash and returns it once
func (s *studentServiceImpl) ResetPassword(ctx context.Context, id int64) (*dto.PasswordResetResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	password, err := auth.GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("error generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.studentRepo.UpdatePassword(ctx, id, hash); err != nil {
		return nil, err
	}

	if s.emailService != nil && student.Email != "" {
		if err := s.emailService.SendPasswordReset(student.Email, student.FullName, password); err != nil {
			s.logger.Warn().Err(err).Int64("studentID", id).Msg("Failed to email reset password")
		}
	}
	s.logger.Info().Int64("studentID", id).Msg("Student password reset")
	return &dto.PasswordResetResponse{StudentID: id, InitialPassword: password}, nil
}
