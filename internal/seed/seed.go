package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/placement/internal/app/models"
	appRepos "github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/config"
	"github.com/yigit/placement/internal/pkg/auth"
)

// StaffAccount is a staff login created on first start
type StaffAccount struct {
	Username string
	Password string
	Role     appModels.Role
}

// StaffAccounts lists the admin, committee and technical accounts from config
func StaffAccounts(cfg *config.Config) []StaffAccount {
	return []StaffAccount{
		{Username: cfg.Seed.AdminUsername, Password: cfg.Seed.AdminPassword, Role: appModels.RoleAdmin},
		{Username: cfg.Seed.CommitteeUsername, Password: cfg.Seed.CommitteePassword, Role: appModels.RoleCommittee},
		{Username: cfg.Seed.TechnicalUsername, Password: cfg.Seed.TechnicalPassword, Role: appModels.RoleTechnical},
	}
}

// CreateDefaultData creates the staff accounts that do not exist yet.
// Existing accounts keep their password.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, accounts []StaffAccount, lgr zerolog.Logger) error {
	staffRepo := appRepos.NewStaffRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default staff accounts...")
	var finalErr error

	for _, acc := range accounts {
		if acc.Username == "" {
			continue
		}

		exists, err := staffRepo.Exists(ctx, acc.Username)
		if err != nil {
			lgr.Error().Err(err).Str("username", acc.Username).Msg("Error checking staff account")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			continue
		}
		if acc.Password == "" {
			lgr.Warn().Str("username", acc.Username).Str("role", string(acc.Role)).Msg("No seed password configured, account not created")
			continue
		}

		hash, err := auth.HashPassword(acc.Password)
		if err != nil {
			finalErr = errors.Join(finalErr, fmt.Errorf("hashing password for %s: %w", acc.Username, err))
			continue
		}

		created, err := staffRepo.CreateIfMissing(ctx, acc.Username, hash, acc.Role)
		if err != nil {
			lgr.Error().Err(err).Str("username", acc.Username).Msg("Error creating staff account")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			lgr.Info().Str("username", acc.Username).Str("role", string(acc.Role)).Msg("Default staff account created")
		}
	}

	return finalErr
}
