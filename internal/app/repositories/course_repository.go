package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// CourseRepository handles courses, interests and subjects
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db, sb: newStatementBuilder()}
}

// CreateCourse inserts a course
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("name", "total_semesters").
		Values(course.Name, course.TotalSemesters).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&course.ID); err != nil {
		return translateWriteError(err, "course", nil)
	}
	return nil
}

// GetCourseByID retrieves a course
func (r *CourseRepository) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	var c models.Course
	err := r.db.QueryRow(ctx, `SELECT id, name, total_semesters FROM courses WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.TotalSemesters)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrCourseNotFound)
	}
	return &c, nil
}

// ListCourses returns every course by name
func (r *CourseRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, total_semesters FROM courses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.TotalSemesters); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// CreateInterest inserts an interest
func (r *CourseRepository) CreateInterest(ctx context.Context, interest *models.Interest) error {
	sql, args, err := r.sb.Insert("interests").
		Columns("name").
		Values(interest.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create interest SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&interest.ID); err != nil {
		return translateWriteError(err, "interest", nil)
	}
	return nil
}

// ListInterests returns every interest by name
func (r *CourseRepository) ListInterests(ctx context.Context) ([]models.Interest, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM interests ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interests := []models.Interest{}
	for rows.Next() {
		var i models.Interest
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		interests = append(interests, i)
	}
	return interests, rows.Err()
}

// CountInterests returns how many of ids exist
func (r *CourseRepository) CountInterests(ctx context.Context, ids []int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("interests").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count interests SQL")
		return 0, err
	}
	var n int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}

// CreateSubject inserts a subject
func (r *CourseRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	sql, args, err := r.sb.Insert("subjects").
		Columns("name", "course_id", "semester").
		Values(subject.Name, subject.CourseID, subject.Semester).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create subject SQL")
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID); err != nil {
		return translateWriteError(err, "subject", apperrors.ErrCourseNotFound)
	}
	return nil
}

// ListSubjects returns subjects, optionally narrowed to a course and semester
func (r *CourseRepository) ListSubjects(ctx context.Context, courseID *int64, semester *int) ([]models.Subject, error) {
	q := r.sb.Select("id", "name", "course_id", "semester").From("subjects")
	if courseID != nil {
		q = q.Where(squirrel.Eq{"course_id": *courseID})
	}
	if semester != nil {
		q = q.Where(squirrel.Eq{"semester": *semester})
	}

	sql, args, err := q.OrderBy("course_id", "semester", "name").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list subjects SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CourseID, &s.Semester); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// GetSubjectsByIDs returns the subjects with the given ids keyed by id
func (r *CourseRepository) GetSubjectsByIDs(ctx context.Context, ids []int64) (map[int64]models.Subject, error) {
	sql, args, err := r.sb.Select("id", "name", "course_id", "semester").
		From("subjects").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get subjects SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]models.Subject, len(ids))
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CourseID, &s.Semester); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}
