package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// MessageRepository handles announcements and their targets
type MessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db, sb: newStatementBuilder()}
}

func (r *MessageRepository) selectMessages() squirrel.SelectBuilder {
	return r.sb.Select(
		"m.id", "m.title", "m.content", "m.message_type", "m.image_url", "m.created_at",
		"m.targeting_mode", "m.interest_id", "i.name",
	).
		From("messages m").
		LeftJoin("interests i ON i.id = m.interest_id")
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(
		&m.ID, &m.Title, &m.Content, &m.MessageType, &m.ImageURL, &m.CreatedAt,
		&m.TargetingMode, &m.InterestID, &m.InterestName,
	)
	if err != nil {
		return nil, err
	}
	m.CourseTargets = []targeting.CourseSemester{}
	return &m, nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Message, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list messages SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, len(messages))
	targets := make([]*models.Targeting, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
		targets[i] = &m.Targeting
	}
	if err := attachTargets(ctx, r.db, r.sb, messageTargets, ids, targets); err != nil {
		return nil, err
	}
	return messages, nil
}

// Insert writes one message row and its course or student targets
func (r *MessageRepository) Insert(ctx context.Context, q db.Querier, m *models.Message, p targeting.Payload) error {
	sql, args, err := r.sb.Insert("messages").
		Columns("title", "content", "message_type", "targeting_mode", "interest_id", "image_url").
		Values(m.Title, m.Content, m.MessageType, m.TargetingMode, m.InterestID, m.ImageURL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building insert message SQL")
		return err
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		return translateWriteError(err, "message", apperrors.ErrInterestNotFound)
	}
	return insertTargets(ctx, q, r.sb, messageTargets, m.ID, p)
}

// Update changes the title, content and image of a message
func (r *MessageRepository) Update(ctx context.Context, m *models.Message) error {
	sql, args, err := r.sb.Update("messages").
		Set("title", m.Title).
		Set("content", m.Content).
		Set("image_url", m.ImageURL).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update message SQL")
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// Delete removes a message
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// GetByID retrieves a message with its targeting
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	messages, err := r.queryMessages(ctx, r.selectMessages().Where(squirrel.Eq{"m.id": id}))
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, apperrors.ErrMessageNotFound
	}
	return messages[0], nil
}

// List returns every message, newest first
func (r *MessageRepository) List(ctx context.Context) ([]*models.Message, error) {
	return r.queryMessages(ctx, r.selectMessages().OrderBy("m.created_at DESC", "m.id DESC"))
}

// ListForStudent returns the messages that target a student, newest first
func (r *MessageRepository) ListForStudent(ctx context.Context, student *models.Student, limit uint64) ([]*models.Message, error) {
	builder := r.selectMessages().
		Where(targetsStudent(messageTargets, "m", student)).
		OrderBy("m.created_at DESC", "m.id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	return r.queryMessages(ctx, builder)
}

// CourseTargets returns the course targets of a message
func (r *MessageRepository) CourseTargets(ctx context.Context, id int64) ([]targeting.CourseSemester, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	byID, err := loadCourseTargets(ctx, r.db, r.sb, messageTargets, []int64{id})
	if err != nil {
		return nil, err
	}
	if byID[id] == nil {
		return []targeting.CourseSemester{}, nil
	}
	return byID[id], nil
}

// Recipients lists the students-mode recipients of a message
func (r *MessageRepository) Recipients(ctx context.Context, id int64) ([]models.Recipient, error) {
	return loadRecipients(ctx, r.db, r.sb, messageTargets, id)
}
