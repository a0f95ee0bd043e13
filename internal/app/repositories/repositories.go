package repositories

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
)

// Repositories holds all the repository instances
type Repositories struct {
	StaffRepository      *StaffRepository
	CourseRepository     *CourseRepository
	StudentRepository    *StudentRepository
	CompanyRepository    *CompanyRepository
	MessageRepository    *MessageRepository
	SeminarRepository    *SeminarRepository
	AttendanceRepository *AttendanceRepository
	ExamRepository       *ExamRepository
	BroadcastRepository  *BroadcastRepository
	StationeryRepository *StationeryRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		StaffRepository:      NewStaffRepository(db),
		CourseRepository:     NewCourseRepository(db),
		StudentRepository:    NewStudentRepository(db),
		CompanyRepository:    NewCompanyRepository(db),
		MessageRepository:    NewMessageRepository(db),
		SeminarRepository:    NewSeminarRepository(db),
		AttendanceRepository: NewAttendanceRepository(db),
		ExamRepository:       NewExamRepository(db),
		BroadcastRepository:  NewBroadcastRepository(db),
		StationeryRepository: NewStationeryRepository(db),
	}
}

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// translateWriteError maps constraint failures onto application errors.
// notFound is returned for foreign-key violations when non-nil.
func translateWriteError(err error, what string, notFound error) error {
	switch {
	case err == nil:
		return nil
	case dberrors.IsUniqueViolation(err):
		return apperrors.NewConflictError(fmt.Sprintf("%s already exists", what))
	case dberrors.IsForeignKeyViolation(err):
		if notFound != nil {
			return fmt.Errorf("%w: %s references a missing row", notFound, what)
		}
		return fmt.Errorf("%w: %s references a missing row", apperrors.ErrValidationFailed, what)
	case dberrors.IsCheckViolation(err, ""):
		return fmt.Errorf("%w: %s violates a constraint", apperrors.ErrValidationFailed, what)
	}
	return err
}

// notFoundOr maps pgx.ErrNoRows onto sentinel
func notFoundOr(err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}
