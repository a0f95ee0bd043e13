package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appModels "github.com/yigit/placement/internal/app/models"
	appRepos "github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/config"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/testing/testdb"
)

func TestStaffAccounts(t *testing.T) {
	cfg := &config.Config{}
	cfg.Seed.AdminUsername = "root"
	cfg.Seed.AdminPassword = "pw"
	cfg.Seed.CommitteeUsername = "committee"
	cfg.Seed.TechnicalUsername = "store"

	accounts := StaffAccounts(cfg)
	require.Len(t, accounts, 3)
	assert.Equal(t, StaffAccount{Username: "root", Password: "pw", Role: appModels.RoleAdmin}, accounts[0])
	assert.Equal(t, appModels.RoleCommittee, accounts[1].Role)
	assert.Equal(t, appModels.RoleTechnical, accounts[2].Role)
	assert.Equal(t, "store", accounts[2].Username)
}

func TestCreateDefaultData(t *testing.T) {
	pg := testdb.SetupSharedPostgres(t)
	ctx := context.Background()
	repo := appRepos.NewStaffRepository(pg.DB.Pool)

	accounts := []StaffAccount{
		{Username: "admin", Password: "Admin123!", Role: appModels.RoleAdmin},
		{Username: "committee", Password: "", Role: appModels.RoleCommittee},
		{Username: "", Password: "ignored", Role: appModels.RoleTechnical},
	}
	require.NoError(t, CreateDefaultData(ctx, pg.DB.Pool, accounts, zerolog.Nop()))

	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, appModels.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "Admin123!"))

	exists, err := repo.Exists(ctx, "committee")
	require.NoError(t, err)
	assert.False(t, exists, "accounts without a password are not created")

	// a second boot keeps the stored password
	accounts[0].Password = "Changed456!"
	require.NoError(t, CreateDefaultData(ctx, pg.DB.Pool, accounts, zerolog.Nop()))
	admin, err = repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "Admin123!"))
}
