package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/hallticket"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// CatalogService manages courses, interests, subjects, exams and broadcasts
type CatalogService interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error)
	ListInterests(ctx context.Context) ([]models.Interest, error)
	CreateInterest(ctx context.Context, req *dto.CreateInterestRequest) (*models.Interest, error)
	ListSubjects(ctx context.Context, courseID *int64, semester *int) ([]models.Subject, error)
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error)
	ListExams(ctx context.Context, courseID *int64, semester *int) ([]*models.Exam, error)
	CreateExam(ctx context.Context, req *dto.CreateExamRequest) (*models.Exam, error)
	DeleteExam(ctx context.Context, id int64) error
	HallTickets(ctx context.Context, examID int64) ([]byte, *models.Exam, error)
	ListBroadcasts(ctx context.Context) ([]models.Broadcast, error)
	CreateBroadcast(ctx context.Context, req *dto.CreateBroadcastRequest) (*models.Broadcast, error)
	ResolvePrefill(ctx context.Context, values url.Values) (*dto.PrefillResponse, error)
}

type catalogServiceImpl struct {
	db            *db.PostgresDB
	courseRepo    *repositories.CourseRepository
	examRepo      *repositories.ExamRepository
	studentRepo   *repositories.StudentRepository
	broadcastRepo *repositories.BroadcastRepository
	targets       targetChecker
	institution   hallticket.Institution
	now           func() time.Time
	logger        zerolog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	database *db.PostgresDB,
	repos *repositories.Repositories,
	institution hallticket.Institution,
	logger zerolog.Logger,
) CatalogService {
	return &catalogServiceImpl{
		db:            database,
		courseRepo:    repos.CourseRepository,
		examRepo:      repos.ExamRepository,
		studentRepo:   repos.StudentRepository,
		broadcastRepo: repos.BroadcastRepository,
		targets:       targetChecker{courseRepo: repos.CourseRepository, studentRepo: repos.StudentRepository},
		institution:   institution,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *catalogServiceImpl) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.ListCourses(ctx)
}

// CreateCourse adds a course; names are unique
func (s *catalogServiceImpl) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{Name: strings.TrimSpace(req.Name), TotalSemesters: req.TotalSemesters}
	if course.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}
	if course.TotalSemesters <= 0 {
		return nil, fmt.Errorf("%w: total_semesters must be positive", apperrors.ErrValidationFailed)
	}
	if err := s.courseRepo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *catalogServiceImpl) ListInterests(ctx context.Context) ([]models.Interest, error) {
	return s.courseRepo.ListInterests(ctx)
}

// CreateInterest adds an interest; names are unique
func (s *catalogServiceImpl) CreateInterest(ctx context.Context, req *dto.CreateInterestRequest) (*models.Interest, error) {
	interest := &models.Interest{Name: strings.TrimSpace(req.Name)}
	if interest.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}
	if err := s.courseRepo.CreateInterest(ctx, interest); err != nil {
		return nil, err
	}
	return interest, nil
}

func (s *catalogServiceImpl) ListSubjects(ctx context.Context, courseID *int64, semester *int) ([]models.Subject, error) {
	return s.courseRepo.ListSubjects(ctx, courseID, semester)
}

// CreateSubject adds a subject to a semester of a course
func (s *catalogServiceImpl) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	subject := &models.Subject{Name: strings.TrimSpace(req.Name), CourseID: req.CourseID, Semester: req.Semester}
	if subject.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}
	course, err := s.courseRepo.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if subject.Semester < 1 || subject.Semester > course.TotalSemesters {
		return nil, fmt.Errorf("%w: semester must be between 1 and %d", apperrors.ErrValidationFailed, course.TotalSemesters)
	}
	if err := s.courseRepo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *catalogServiceImpl) ListExams(ctx context.Context, courseID *int64, semester *int) ([]*models.Exam, error) {
	return s.examRepo.List(ctx, courseID, semester)
}

// ValidateExamSubjects checks a timetable against the subjects of one course semester
func ValidateExamSubjects(entries []dto.ExamSubjectRequest, subjects map[int64]models.Subject, courseID int64, semester int) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: an exam needs at least one subject", apperrors.ErrValidationFailed)
	}
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		sub, ok := subjects[e.SubjectID]
		if !ok {
			return fmt.Errorf("%w: subject %d does not exist", apperrors.ErrValidationFailed, e.SubjectID)
		}
		if sub.CourseID != courseID || sub.Semester != semester {
			return fmt.Errorf("%w: %s does not belong to this course semester", apperrors.ErrValidationFailed, sub.Name)
		}
		if seen[e.SubjectID] {
			return fmt.Errorf("%w: %s is scheduled twice", apperrors.ErrValidationFailed, sub.Name)
		}
		seen[e.SubjectID] = true
		if e.TotalMarks <= 0 {
			return fmt.Errorf("%w: total_marks of %s must be positive", apperrors.ErrValidationFailed, sub.Name)
		}
		if !e.EndTime.After(e.StartTime) {
			return fmt.Errorf("%w: %s must end after it starts", apperrors.ErrValidationFailed, sub.Name)
		}
	}
	return nil
}

// CreateExam inserts an exam and its timetable in one transaction
func (s *catalogServiceImpl) CreateExam(ctx context.Context, req *dto.CreateExamRequest) (*models.Exam, error) {
	name := strings.TrimSpace(req.ExamName)
	if name == "" {
		return nil, fmt.Errorf("%w: exam_name is required", apperrors.ErrValidationFailed)
	}
	course, err := s.courseRepo.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if req.Semester < 1 || req.Semester > course.TotalSemesters {
		return nil, fmt.Errorf("%w: semester must be between 1 and %d", apperrors.ErrValidationFailed, course.TotalSemesters)
	}

	ids := make([]int64, 0, len(req.Subjects))
	for _, e := range req.Subjects {
		ids = append(ids, e.SubjectID)
	}
	subjects, err := s.courseRepo.GetSubjectsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading subjects: %w", err)
	}
	if err := ValidateExamSubjects(req.Subjects, subjects, course.ID, req.Semester); err != nil {
		return nil, err
	}

	exam := &models.Exam{ExamName: name, CourseID: course.ID, CourseName: course.Name, Semester: req.Semester}
	for _, e := range req.Subjects {
		exam.Subjects = append(exam.Subjects, models.ExamSubject{
			SubjectID:   e.SubjectID,
			SubjectName: subjects[e.SubjectID].Name,
			TotalMarks:  e.TotalMarks,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
		})
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.examRepo.Create(ctx, tx, exam)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("examID", exam.ID).Str("name", name).Msg("Exam created")
	return s.examRepo.GetByID(ctx, exam.ID)
}

func (s *catalogServiceImpl) DeleteExam(ctx context.Context, id int64) error {
	return s.examRepo.Delete(ctx, id)
}

// HallTickets renders one page per student of the exam's course and current semester
func (s *catalogServiceImpl) HallTickets(ctx context.Context, examID int64) ([]byte, *models.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, nil, err
	}
	students, err := s.studentRepo.ListByCourseSemester(ctx, exam.CourseID, exam.Semester)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading students: %w", err)
	}

	var buf bytes.Buffer
	if err := hallticket.Render(&buf, s.institution, exam, students, s.now()); err != nil {
		s.logger.Error().Err(err).Int64("examID", examID).Msg("Failed to render hall tickets")
		return nil, nil, err
	}
	return buf.Bytes(), exam, nil
}

func (s *catalogServiceImpl) ListBroadcasts(ctx context.Context) ([]models.Broadcast, error) {
	return s.broadcastRepo.List(ctx, 0)
}

// CreateBroadcast posts a notice to every student
func (s *catalogServiceImpl) CreateBroadcast(ctx context.Context, req *dto.CreateBroadcastRequest) (*models.Broadcast, error) {
	b := &models.Broadcast{Title: strings.TrimSpace(req.Title), Content: strings.TrimSpace(req.Content)}
	if b.Title == "" || b.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperrors.ErrValidationFailed)
	}
	if err := s.broadcastRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ResolvePrefill turns a students-list handoff link into a checked targeting
// payload the create forms can start from
func (s *catalogServiceImpl) ResolvePrefill(ctx context.Context, values url.Values) (*dto.PrefillResponse, error) {
	p, err := targeting.ParsePrefill(values)
	if errors.Is(err, targeting.ErrNoPrefill) {
		return nil, fmt.Errorf("%w: prefill is required", apperrors.ErrValidationFailed)
	}
	if err != nil {
		return nil, err
	}

	p, err = s.targets.check(ctx, p)
	if err != nil {
		return nil, err
	}
	return &dto.PrefillResponse{Payload: p, RowsToCreate: targeting.RowCount(p)}, nil
}
