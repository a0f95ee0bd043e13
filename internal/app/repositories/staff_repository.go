package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// StaffRepository handles database operations for staff accounts
type StaffRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: db, sb: newStatementBuilder()}
}

func (r *StaffRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.StaffUser, error) {
	sql, args, err := r.sb.Select("id", "username", "password_hash", "role", "created_at").
		From("staff_users").
		Where(where).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get staff SQL")
		return nil, err
	}

	var u models.StaffUser
	err = r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrStaffNotFound)
	}
	return &u, nil
}

// GetByUsername retrieves a staff user for login
func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (*models.StaffUser, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// GetByID retrieves a staff user by ID
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*models.StaffUser, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// CreateIfMissing inserts a staff user unless the username exists. It reports whether a row was created.
func (r *StaffRepository) CreateIfMissing(ctx context.Context, username, passwordHash string, role models.Role) (bool, error) {
	sql, args, err := r.sb.Insert("staff_users").
		Columns("username", "password_hash", "role").
		Values(username, passwordHash, role).
		Suffix("ON CONFLICT (username) DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create staff SQL")
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Exists reports whether a username is taken
func (r *StaffRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM staff_users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}
