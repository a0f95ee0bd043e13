package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/ist"
	"github.com/yigit/placement/internal/pkg/logger"
	"github.com/yigit/placement/internal/pkg/targeting"
)

var seminarColumns = []string{
	"se.id", "se.title", "se.description", "se.speaker_name", "se.seminar_date", "se.created_at",
	"se.targeting_mode", "se.interest_id", "i.name",
	"COALESCE((SELECT q.active FROM seminar_qr q WHERE q.seminar_id = se.id), FALSE)",
	"(SELECT COUNT(*) FROM seminar_attendance sa WHERE sa.seminar_id = se.id AND sa.status = 'Present')",
	"(SELECT AVG(sr.rating)::float8 FROM seminar_ratings sr WHERE sr.seminar_id = se.id)",
	"(SELECT COUNT(*) FROM seminar_ratings sr WHERE sr.seminar_id = se.id)",
}

// SeminarRepository handles seminars and their targets
type SeminarRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSeminarRepository creates a new SeminarRepository
func NewSeminarRepository(db *pgxpool.Pool) *SeminarRepository {
	return &SeminarRepository{db: db, sb: newStatementBuilder()}
}

func (r *SeminarRepository) selectSeminars() squirrel.SelectBuilder {
	return r.sb.Select(seminarColumns...).
		From("seminars se").
		LeftJoin("interests i ON i.id = se.interest_id")
}

func scanSeminar(row pgx.Row) (*models.Seminar, error) {
	var s models.Seminar
	var stored time.Time
	err := row.Scan(
		&s.ID, &s.Title, &s.Description, &s.SpeakerName, &stored, &s.CreatedAt,
		&s.TargetingMode, &s.InterestID, &s.InterestName,
		&s.QRActive, &s.AttendanceCount, &s.AverageRating, &s.RatingCount,
	)
	if err != nil {
		return nil, err
	}
	s.SeminarDate = ist.FromStored(stored)
	s.CourseTargets = []targeting.CourseSemester{}
	return &s, nil
}

func (r *SeminarRepository) querySeminars(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Seminar, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list seminars SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seminars := []*models.Seminar{}
	for rows.Next() {
		s, err := scanSeminar(rows)
		if err != nil {
			return nil, err
		}
		seminars = append(seminars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, len(seminars))
	targets := make([]*models.Targeting, len(seminars))
	for i, s := range seminars {
		ids[i] = s.ID
		targets[i] = &s.Targeting
	}
	if err := attachTargets(ctx, r.db, r.sb, seminarTargets, ids, targets); err != nil {
		return nil, err
	}
	return seminars, nil
}

// Insert writes one seminar row and its course or student targets
func (r *SeminarRepository) Insert(ctx context.Context, q db.Querier, s *models.Seminar, p targeting.Payload) error {
	sql, args, err := r.sb.Insert("seminars").
		Columns("title", "description", "speaker_name", "seminar_date", "targeting_mode", "interest_id").
		Values(s.Title, s.Description, s.SpeakerName, ist.ToStored(s.SeminarDate), s.TargetingMode, s.InterestID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building insert seminar SQL")
		return err
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		return translateWriteError(err, "seminar", apperrors.ErrInterestNotFound)
	}
	return insertTargets(ctx, q, r.sb, seminarTargets, s.ID, p)
}

// Update rewrites a seminar. A nil payload keeps the current targeting.
func (r *SeminarRepository) Update(ctx context.Context, q db.Querier, s *models.Seminar, p *targeting.Payload) error {
	builder := r.sb.Update("seminars").
		Set("title", s.Title).
		Set("description", s.Description).
		Set("speaker_name", s.SpeakerName).
		Set("seminar_date", ist.ToStored(s.SeminarDate)).
		Where(squirrel.Eq{"id": s.ID})
	if p != nil {
		builder = builder.Set("targeting_mode", s.TargetingMode).Set("interest_id", s.InterestID)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update seminar SQL")
		return err
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return translateWriteError(err, "seminar", apperrors.ErrInterestNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSeminarNotFound
	}
	if p == nil {
		return nil
	}

	if err := deleteTargets(ctx, q, r.sb, seminarTargets, s.ID); err != nil {
		return err
	}
	return insertTargets(ctx, q, r.sb, seminarTargets, s.ID, *p)
}

// Delete removes a seminar with its QR, attendance and ratings
func (r *SeminarRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM seminars WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSeminarNotFound
	}
	return nil
}

// GetByID retrieves a seminar with its targeting and aggregates
func (r *SeminarRepository) GetByID(ctx context.Context, id int64) (*models.Seminar, error) {
	seminars, err := r.querySeminars(ctx, r.selectSeminars().Where(squirrel.Eq{"se.id": id}))
	if err != nil {
		return nil, err
	}
	if len(seminars) == 0 {
		return nil, apperrors.ErrSeminarNotFound
	}
	return seminars[0], nil
}

// List returns every seminar, latest date first
func (r *SeminarRepository) List(ctx context.Context) ([]*models.Seminar, error) {
	return r.querySeminars(ctx, r.selectSeminars().OrderBy("se.seminar_date DESC", "se.id DESC"))
}

// ListForStudent returns the seminars that target a student, latest date first
func (r *SeminarRepository) ListForStudent(ctx context.Context, student *models.Student) ([]*models.Seminar, error) {
	return r.querySeminars(ctx, r.selectSeminars().
		Where(targetsStudent(seminarTargets, "se", student)).
		OrderBy("se.seminar_date DESC", "se.id DESC"))
}

// IsTargeted reports whether a seminar targets a student
func (r *SeminarRepository) IsTargeted(ctx context.Context, seminarID int64, student *models.Student) (bool, error) {
	return isTargeted(ctx, r.db, r.sb, seminarTargets, seminarID, student)
}

// Recipients lists the students-mode recipients of a seminar
func (r *SeminarRepository) Recipients(ctx context.Context, seminarID int64) ([]models.Recipient, error) {
	return loadRecipients(ctx, r.db, r.sb, seminarTargets, seminarID)
}
