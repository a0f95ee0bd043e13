package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/logger"
)

var studentColumns = []string{
	"s.id", "s.full_name", "s.enrollment_number", "s.unique_code", "s.course_id", "c.name",
	"s.email", "s.phone_number", "s.parent_phone_number", "s.admission_semester", "s.current_semester",
	"s.resume_link", "s.agreement_link", "s.placement_status", "s.company_name", "s.placement_tenure_days",
	"s.fee_category", "s.caste", "s.gender", "s.created_at", "s.password_hash",
	"COALESCE((SELECT array_agg(si.interest_id ORDER BY si.interest_id) FROM student_interests si WHERE si.student_id = s.id), '{}') AS interest_ids",
}

var studentBriefColumns = []string{
	"s.id", "s.full_name", "s.enrollment_number", "s.course_id", "c.name", "s.current_semester", "s.email",
}

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: newStatementBuilder()}
}

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		From("students s").
		Join("courses c ON c.id = s.course_id")
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.FullName, &s.EnrollmentNumber, &s.UniqueCode, &s.CourseID, &s.CourseName,
		&s.Email, &s.PhoneNumber, &s.ParentPhoneNumber, &s.AdmissionSemester, &s.CurrentSemester,
		&s.ResumeLink, &s.AgreementLink, &s.PlacementStatus, &s.CompanyName, &s.PlacementTenureDays,
		&s.FeeCategory, &s.Caste, &s.Gender, &s.CreatedAt, &s.PasswordHash,
		&s.InterestIDs,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStudentBrief(row pgx.Row) (models.StudentBrief, error) {
	var b models.StudentBrief
	err := row.Scan(&b.ID, &b.FullName, &b.EnrollmentNumber, &b.CourseID, &b.CourseName, &b.CurrentSemester, &b.Email)
	return b, err
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer, orderBy ...squirrel.Sqlizer) (*models.Student, error) {
	builder := r.selectStudents().Where(where)
	for _, o := range orderBy {
		builder = builder.OrderByClause(o)
	}
	sql, args, err := builder.Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, err
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrStudentNotFound)
	}
	return student, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.id": id})
}

// GetByEnrollmentNumber retrieves a student for login
func (r *StudentRepository) GetByEnrollmentNumber(ctx context.Context, enrollment string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.enrollment_number": strings.TrimSpace(enrollment)})
}

// GetByCode resolves a scanned code: the unique code first, then the enrollment number
func (r *StudentRepository) GetByCode(ctx context.Context, code string) (*models.Student, error) {
	code = strings.TrimSpace(code)
	upper := strings.ToUpper(code)
	// a code can equal someone else's enrollment number; the code owner wins
	return r.getOne(ctx,
		squirrel.Or{
			squirrel.Eq{"s.unique_code": upper},
			squirrel.Eq{"s.enrollment_number": code},
		},
		squirrel.Expr("(s.unique_code IS NOT DISTINCT FROM ?) DESC", upper),
	)
}

// Create inserts a student and its interests
func (r *StudentRepository) Create(ctx context.Context, q db.Querier, s *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns(
			"full_name", "enrollment_number", "unique_code", "course_id", "email", "phone_number",
			"parent_phone_number", "admission_semester", "current_semester", "resume_link", "agreement_link",
			"placement_status", "password_hash", "fee_category", "caste", "gender",
		).
		Values(
			s.FullName, s.EnrollmentNumber, s.UniqueCode, s.CourseID, s.Email, s.PhoneNumber,
			s.ParentPhoneNumber, s.AdmissionSemester, s.CurrentSemester, s.ResumeLink, s.AgreementLink,
			s.PlacementStatus, s.PasswordHash, s.FeeCategory, s.Caste, s.Gender,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return err
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_enrollment_number_key") {
			return apperrors.ErrEnrollmentExists
		}
		return translateWriteError(err, "student", apperrors.ErrCourseNotFound)
	}

	return r.ReplaceInterests(ctx, q, s.ID, s.InterestIDs)
}

// Update writes the editable columns. passwordHash replaces the stored hash when non-nil.
func (r *StudentRepository) Update(ctx context.Context, q db.Querier, s *models.Student, passwordHash *string) error {
	builder := r.sb.Update("students").
		Set("full_name", s.FullName).
		Set("enrollment_number", s.EnrollmentNumber).
		Set("course_id", s.CourseID).
		Set("email", s.Email).
		Set("phone_number", s.PhoneNumber).
		Set("parent_phone_number", s.ParentPhoneNumber).
		Set("admission_semester", s.AdmissionSemester).
		Set("current_semester", s.CurrentSemester).
		Set("resume_link", s.ResumeLink).
		Set("agreement_link", s.AgreementLink).
		Set("fee_category", s.FeeCategory).
		Set("caste", s.Caste).
		Set("gender", s.Gender).
		Where(squirrel.Eq{"id": s.ID})
	if passwordHash != nil {
		builder = builder.Set("password_hash", *passwordHash)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return err
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_enrollment_number_key") {
			return apperrors.ErrEnrollmentExists
		}
		return translateWriteError(err, "student", apperrors.ErrCourseNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return r.ReplaceInterests(ctx, q, s.ID, s.InterestIDs)
}

// ReplaceInterests sets the interests of a student
func (r *StudentRepository) ReplaceInterests(ctx context.Context, q db.Querier, studentID int64, interestIDs []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM student_interests WHERE student_id = $1`, studentID); err != nil {
		return err
	}
	if len(interestIDs) == 0 {
		return nil
	}

	builder := r.sb.Insert("student_interests").Columns("student_id", "interest_id")
	for _, id := range interestIDs {
		builder = builder.Values(studentID, id)
	}
	sql, args, err := builder.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building student interests SQL")
		return err
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return translateWriteError(err, "student interest", apperrors.ErrInterestNotFound)
	}
	return nil
}

// Delete removes a student
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// List returns a filtered page of students and the total count
func (r *StudentRepository) List(ctx context.Context, filter dto.StudentFilter) ([]*models.Student, int64, error) {
	where := squirrel.And{}
	if filter.CourseID != nil {
		where = append(where, squirrel.Eq{"s.course_id": *filter.CourseID})
	}
	if filter.Semester != nil {
		where = append(where, squirrel.Eq{"s.current_semester": *filter.Semester})
	}
	if filter.PlacementStatus != "" {
		where = append(where, squirrel.Eq{"s.placement_status": filter.PlacementStatus})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"s.full_name": pattern},
			squirrel.ILike{"s.enrollment_number": pattern},
			squirrel.ILike{"s.email": pattern},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("students s").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count students SQL")
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	sql, args, err := r.selectStudents().
		Where(where).
		OrderBy("s.full_name", "s.id").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, 0, err
	}

	students, err := r.queryStudents(ctx, sql, args...)
	return students, total, err
}

func (r *StudentRepository) queryStudents(ctx context.Context, sql string, args ...interface{}) ([]*models.Student, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// GetByIDs returns the students with the given ids
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Student, error) {
	sql, args, err := r.selectStudents().Where(squirrel.Eq{"s.id": ids}).OrderBy("s.full_name").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get students by ids SQL")
		return nil, err
	}
	return r.queryStudents(ctx, sql, args...)
}

// CountExisting returns how many of ids are real students
func (r *StudentRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("students").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count students SQL")
		return 0, err
	}
	var n int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}

// ListByCourseSemester returns the students currently in a course semester
func (r *StudentRepository) ListByCourseSemester(ctx context.Context, courseID int64, semester int) ([]*models.Student, error) {
	sql, args, err := r.selectStudents().
		Where(squirrel.Eq{"s.course_id": courseID, "s.current_semester": semester}).
		OrderBy("s.enrollment_number").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building students by semester SQL")
		return nil, err
	}
	return r.queryStudents(ctx, sql, args...)
}

// SemesterCounts counts students per course and current semester
func (r *StudentRepository) SemesterCounts(ctx context.Context) ([]models.SemesterCount, error) {
	sql, args, err := r.sb.Select("s.course_id", "c.name", "s.current_semester", "COUNT(*)").
		From("students s").
		Join("courses c ON c.id = s.course_id").
		GroupBy("s.course_id", "c.name", "s.current_semester").
		OrderBy("c.name", "s.current_semester").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building semester counts SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.SemesterCount{}
	for rows.Next() {
		var sc models.SemesterCount
		if err := rows.Scan(&sc.CourseID, &sc.CourseName, &sc.Semester, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

// IDsWithoutCode lists students that have no unique code yet
func (r *StudentRepository) IDsWithoutCode(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM students WHERE unique_code IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetUniqueCode assigns a code to a student that has none
func (r *StudentRepository) SetUniqueCode(ctx context.Context, id int64, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE students SET unique_code = $1 WHERE id = $2 AND unique_code IS NULL`, code, id)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return false, apperrors.NewConflictError("unique code collision")
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePassword replaces the password hash
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE students SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdateProfile sets caste and gender
func (r *StudentRepository) UpdateProfile(ctx context.Context, id int64, caste, gender string) error {
	tag, err := r.db.Exec(ctx, `UPDATE students SET caste = $1, gender = $2 WHERE id = $3`, caste, gender, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// MarkPlaced records a placement
func (r *StudentRepository) MarkPlaced(ctx context.Context, id int64, companyName string, tenureDays *int) error {
	sql, args, err := r.sb.Update("students").
		Set("placement_status", models.PlacementPlaced).
		Set("company_name", companyName).
		Set("placement_tenure_days", tenureDays).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building mark placed SQL")
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
