// Package testdb starts a PostgreSQL container for integration tests and
// applies the repository migrations to it.
package testdb

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	appMigrations "github.com/yigit/placement/internal/app/migrations"
	"github.com/yigit/placement/internal/db"
)

var (
	sharedContainer *PostgresContainer
	sharedErr       error
	sharedOnce      sync.Once
)

// Tables lists every application table, children first
var Tables = []string{
	"stock_history", "stationery_requests", "stationery_items",
	"exam_subjects", "exams", "subjects", "broadcasts",
	"seminar_ratings", "seminar_attendance", "seminar_qr", "seminar_students", "seminar_course_targets", "seminars",
	"message_recipients", "message_course_targets", "messages",
	"company_applications", "company_students", "company_course_targets", "companies",
	"student_interests", "students", "interests", "courses", "staff_users",
}

// PostgresContainer wraps the postgres testcontainer
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *db.PostgresDB
	DSN       string
}

// MigrationsDir is the repository migrations directory
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// SetupSharedPostgres returns a migrated, emptied container shared by every
// test in the binary. Tests using it must not run in parallel. The container
// is reaped by testcontainers when the binary exits.
// It is skipped under -short.
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sharedOnce.Do(func() {
		sharedContainer, sharedErr = start(context.Background())
	})
	require.NoError(t, sharedErr)

	CleanupTables(t, sharedContainer.DB)
	return sharedContainer
}

func start(ctx context.Context) (*PostgresContainer, error) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(poolConfig)
	if err != nil {
		return nil, err
	}

	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, MigrationsDir()); err != nil {
		database.Close()
		return nil, err
	}

	return &PostgresContainer{Container: pgContainer, DB: database, DSN: connStr}, nil
}

// CleanupTables empties tables, all of Tables by default
func CleanupTables(t *testing.T, database *db.PostgresDB, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		tables = Tables
	}

	ctx := context.Background()
	for _, table := range tables {
		_, err := database.Pool.Exec(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate table: %s", table)
	}
}
