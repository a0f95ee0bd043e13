package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/logger"
)

// BroadcastRepository handles notices shown to every student
type BroadcastRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBroadcastRepository creates a new BroadcastRepository
func NewBroadcastRepository(db *pgxpool.Pool) *BroadcastRepository {
	return &BroadcastRepository{db: db, sb: newStatementBuilder()}
}

// Create inserts a broadcast
func (r *BroadcastRepository) Create(ctx context.Context, b *models.Broadcast) error {
	sql, args, err := r.sb.Insert("broadcasts").
		Columns("title", "content").
		Values(b.Title, b.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create broadcast SQL")
		return err
	}
	return r.db.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt)
}

// List returns broadcasts, newest first. A zero limit returns all of them.
func (r *BroadcastRepository) List(ctx context.Context, limit uint64) ([]models.Broadcast, error) {
	builder := r.sb.Select("id", "title", "content", "created_at").
		From("broadcasts").
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list broadcasts SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	broadcasts := []models.Broadcast{}
	for rows.Next() {
		var b models.Broadcast
		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &b.CreatedAt); err != nil {
			return nil, err
		}
		broadcasts = append(broadcasts, b)
	}
	return broadcasts, rows.Err()
}
