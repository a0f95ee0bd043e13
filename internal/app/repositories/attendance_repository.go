package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// AttendanceRepository handles seminar QR gates, attendance and ratings
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db, sb: newStatementBuilder()}
}

const qrColumns = "seminar_id, token, previous_token, active, rotated_at"

func scanQR(row pgx.Row) (*models.SeminarQR, error) {
	var qr models.SeminarQR
	if err := row.Scan(&qr.SeminarID, &qr.Token, &qr.PreviousToken, &qr.Active, &qr.RotatedAt); err != nil {
		return nil, err
	}
	return &qr, nil
}

// CreateQR opens the QR gate of a new seminar
func (r *AttendanceRepository) CreateQR(ctx context.Context, q db.Querier, seminarID int64, token string) error {
	_, err := q.Exec(ctx, `INSERT INTO seminar_qr (seminar_id, token, active) VALUES ($1, $2, TRUE)`, seminarID, token)
	return translateWriteError(err, "seminar qr", apperrors.ErrSeminarNotFound)
}

// GetQR returns the QR gate of a seminar
func (r *AttendanceRepository) GetQR(ctx context.Context, seminarID int64) (*models.SeminarQR, error) {
	qr, err := scanQR(r.db.QueryRow(ctx, `SELECT `+qrColumns+` FROM seminar_qr WHERE seminar_id = $1`, seminarID))
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrQRTokenUnknown)
	}
	return qr, nil
}

// EnsureQR returns the QR gate of a seminar, creating an active one when missing
func (r *AttendanceRepository) EnsureQR(ctx context.Context, seminarID int64, token string) (*models.SeminarQR, error) {
	qr, err := scanQR(r.db.QueryRow(ctx,
		`INSERT INTO seminar_qr (seminar_id, token, active) VALUES ($1, $2, TRUE)
		 ON CONFLICT (seminar_id) DO UPDATE SET seminar_id = EXCLUDED.seminar_id
		 RETURNING `+qrColumns,
		seminarID, token,
	))
	if err != nil {
		return nil, translateWriteError(err, "seminar qr", apperrors.ErrSeminarNotFound)
	}
	return qr, nil
}

// RotateQR swaps in a new token when the current one was issued at or before
// staleBefore. The old token is kept as previous_token. When another caller
// rotated first the current row is returned unchanged.
func (r *AttendanceRepository) RotateQR(ctx context.Context, seminarID int64, token string, staleBefore time.Time) (*models.SeminarQR, error) {
	qr, err := scanQR(r.db.QueryRow(ctx,
		`UPDATE seminar_qr SET previous_token = token, token = $1, rotated_at = NOW()
		 WHERE seminar_id = $2 AND rotated_at <= $3
		 RETURNING `+qrColumns,
		token, seminarID, staleBefore,
	))
	if err == nil {
		return qr, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return r.GetQR(ctx, seminarID)
}

// SetQRActive opens or closes the QR gate. Reopening a closed gate swaps in
// token and drops the previous one, so codes shown before closing stay dead.
func (r *AttendanceRepository) SetQRActive(ctx context.Context, seminarID int64, active bool, token string) (*models.SeminarQR, error) {
	const reopened = "(EXCLUDED.active AND NOT seminar_qr.active)"
	qr, err := scanQR(r.db.QueryRow(ctx,
		`INSERT INTO seminar_qr (seminar_id, token, active) VALUES ($1, $2, $3)
		 ON CONFLICT (seminar_id) DO UPDATE SET
		   token = CASE WHEN `+reopened+` THEN EXCLUDED.token ELSE seminar_qr.token END,
		   previous_token = CASE WHEN `+reopened+` THEN NULL ELSE seminar_qr.previous_token END,
		   rotated_at = CASE WHEN `+reopened+` THEN NOW() ELSE seminar_qr.rotated_at END,
		   active = EXCLUDED.active
		 RETURNING `+qrColumns,
		seminarID, token, active,
	))
	if err != nil {
		return nil, translateWriteError(err, "seminar qr", apperrors.ErrSeminarNotFound)
	}
	return qr, nil
}

// FindQRByToken resolves a scanned token against the current and previous tokens
func (r *AttendanceRepository) FindQRByToken(ctx context.Context, token string) (*models.SeminarQR, error) {
	qr, err := scanQR(r.db.QueryRow(ctx,
		`SELECT `+qrColumns+` FROM seminar_qr WHERE token = $1 OR previous_token = $1 LIMIT 1`, token))
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrQRTokenUnknown)
	}
	return qr, nil
}

// Mark upserts the attendance of a student
func (r *AttendanceRepository) Mark(ctx context.Context, seminarID, studentID int64, status string, source models.AttendanceSource) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO seminar_attendance (seminar_id, student_id, status, source, marked_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (seminar_id, student_id)
		 DO UPDATE SET status = EXCLUDED.status, source = EXCLUDED.source, marked_at = EXCLUDED.marked_at`,
		seminarID, studentID, status, source,
	)
	return translateWriteError(err, "attendance", apperrors.ErrStudentNotFound)
}

// Sheet lists every student a seminar targets with their attendance. Unmarked students are Absent.
func (r *AttendanceRepository) Sheet(ctx context.Context, seminar *models.Seminar) ([]models.AttendanceRow, error) {
	sql, args, err := targetedStudentsQuery(r.sb, seminarTargets, seminar.ID, seminar.TargetingMode, seminar.InterestID).
		Columns("COALESCE(sa.status, 'Absent')", "sa.source", "sa.marked_at").
		LeftJoin("seminar_attendance sa ON sa.student_id = s.id AND sa.seminar_id = ?", seminar.ID).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building attendance sheet SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheet := []models.AttendanceRow{}
	for rows.Next() {
		var row models.AttendanceRow
		err := rows.Scan(
			&row.ID, &row.FullName, &row.EnrollmentNumber, &row.CourseID, &row.CourseName, &row.CurrentSemester, &row.Email,
			&row.Status, &row.Source, &row.MarkedAt,
		)
		if err != nil {
			return nil, err
		}
		sheet = append(sheet, row)
	}
	return sheet, rows.Err()
}

// StatusesForStudent maps seminar id to the student's recorded status
func (r *AttendanceRepository) StatusesForStudent(ctx context.Context, studentID int64) (map[int64]string, error) {
	rows, err := r.db.Query(ctx, `SELECT seminar_id, status FROM seminar_attendance WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make(map[int64]string)
	for rows.Next() {
		var id int64
		var status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, err
		}
		statuses[id] = status
	}
	return statuses, rows.Err()
}

// Status returns the recorded status of one student, Absent when unmarked
func (r *AttendanceRepository) Status(ctx context.Context, seminarID, studentID int64) (string, error) {
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT status FROM seminar_attendance WHERE seminar_id = $1 AND student_id = $2`,
		seminarID, studentID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AttendanceAbsent, nil
	}
	return status, err
}

// UpsertRating stores a student's rating of a seminar
func (r *AttendanceRepository) UpsertRating(ctx context.Context, rating *models.Rating) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO seminar_ratings (seminar_id, student_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT ON CONSTRAINT seminar_ratings_seminar_student_key
		 DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = NOW()
		 RETURNING id, created_at`,
		rating.SeminarID, rating.StudentID, rating.Rating, rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)
	return translateWriteError(err, "rating", apperrors.ErrSeminarNotFound)
}

// Ratings lists the ratings of a seminar, newest first
func (r *AttendanceRepository) Ratings(ctx context.Context, seminarID int64) ([]models.Rating, error) {
	sql, args, err := r.sb.Select("sr.id", "sr.seminar_id", "sr.student_id", "s.full_name", "sr.rating", "sr.comment", "sr.created_at").
		From("seminar_ratings sr").
		Join("students s ON s.id = sr.student_id").
		Where(squirrel.Eq{"sr.seminar_id": seminarID}).
		OrderBy("sr.created_at DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building ratings SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []models.Rating{}
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.SeminarID, &rt.StudentID, &rt.StudentName, &rt.Rating, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// RatingsByStudent maps seminar id to the rating a student gave
func (r *AttendanceRepository) RatingsByStudent(ctx context.Context, studentID int64) (map[int64]int, error) {
	rows, err := r.db.Query(ctx, `SELECT seminar_id, rating FROM seminar_ratings WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make(map[int64]int)
	for rows.Next() {
		var id int64
		var rating int
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		ratings[id] = rating
	}
	return ratings, rows.Err()
}
