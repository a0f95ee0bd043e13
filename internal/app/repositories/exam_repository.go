package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// ExamRepository handles exams and their timetables
type ExamRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{db: db, sb: newStatementBuilder()}
}

// Create inserts an exam and its subjects
func (r *ExamRepository) Create(ctx context.Context, q db.Querier, exam *models.Exam) error {
	sql, args, err := r.sb.Insert("exams").
		Columns("exam_name", "course_id", "semester").
		Values(exam.ExamName, exam.CourseID, exam.Semester).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create exam SQL")
		return err
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&exam.ID, &exam.CreatedAt); err != nil {
		return translateWriteError(err, "exam", apperrors.ErrCourseNotFound)
	}

	if len(exam.Subjects) == 0 {
		return nil
	}
	builder := r.sb.Insert("exam_subjects").Columns("exam_id", "subject_id", "total_marks", "start_time", "end_time")
	for _, s := range exam.Subjects {
		builder = builder.Values(exam.ID, s.SubjectID, s.TotalMarks, s.StartTime, s.EndTime)
	}
	sql, args, err = builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building exam subjects SQL")
		return err
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return translateWriteError(err, "exam subject", nil)
	}
	return nil
}

// List returns exams, optionally narrowed to a course and semester
func (r *ExamRepository) List(ctx context.Context, courseID *int64, semester *int) ([]*models.Exam, error) {
	builder := r.sb.Select("e.id", "e.exam_name", "e.course_id", "c.name", "e.semester", "e.created_at").
		From("exams e").
		Join("courses c ON c.id = e.course_id")
	if courseID != nil {
		builder = builder.Where(squirrel.Eq{"e.course_id": *courseID})
	}
	if semester != nil {
		builder = builder.Where(squirrel.Eq{"e.semester": *semester})
	}

	sql, args, err := builder.OrderBy("e.created_at DESC", "e.id DESC").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list exams SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exams := []*models.Exam{}
	byID := make(map[int64]*models.Exam)
	for rows.Next() {
		var e models.Exam
		if err := rows.Scan(&e.ID, &e.ExamName, &e.CourseID, &e.CourseName, &e.Semester, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Subjects = []models.ExamSubject{}
		exams = append(exams, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSubjects(ctx, byID); err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *ExamRepository) attachSubjects(ctx context.Context, byID map[int64]*models.Exam) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	sql, args, err := r.sb.Select("es.exam_id", "es.subject_id", "sub.name", "es.total_marks", "es.start_time", "es.end_time").
		From("exam_subjects es").
		Join("subjects sub ON sub.id = es.subject_id").
		Where(squirrel.Eq{"es.exam_id": ids}).
		OrderBy("es.start_time").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building exam subjects SQL")
		return err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var examID int64
		var s models.ExamSubject
		if err := rows.Scan(&examID, &s.SubjectID, &s.SubjectName, &s.TotalMarks, &s.StartTime, &s.EndTime); err != nil {
			return err
		}
		if e, ok := byID[examID]; ok {
			e.Subjects = append(e.Subjects, s)
		}
	}
	return rows.Err()
}

// GetByID retrieves an exam with its timetable
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*models.Exam, error) {
	var e models.Exam
	err := r.db.QueryRow(ctx,
		`SELECT e.id, e.exam_name, e.course_id, c.name, e.semester, e.created_at
		 FROM exams e JOIN courses c ON c.id = e.course_id
		 WHERE e.id = $1`, id,
	).Scan(&e.ID, &e.ExamName, &e.CourseID, &e.CourseName, &e.Semester, &e.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrExamNotFound)
	}

	e.Subjects = []models.ExamSubject{}
	if err := r.attachSubjects(ctx, map[int64]*models.Exam{e.ID: &e}); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes an exam and its timetable
func (r *ExamRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrExamNotFound
	}
	return nil
}
