// Package testutil starts a throwaway Postgres for repository and migration
// tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

const image = "postgres:16-alpine"

var (
	once    sync.Once
	shared  *pgxpool.Pool
	initErr error
)

// Pool returns a migrated pool backed by a container shared by every test in
// the package. Tests are skipped under -short and isolate their data by
// creating their own tenant.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in -short mode")
	}

	once.Do(func() {
		shared, initErr = start(context.Background())
	})
	if initErr != nil {
		t.Fatalf("start postgres: %v", initErr)
	}
	return shared
}

// The container is reaped by testcontainers' Ryuk sidecar when the test
// binary exits.
func start(ctx context.Context) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("complexcare_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("run container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}
	pool, err := database.Connect(ctx, dsn, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, pool, zap.NewNop()); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Tenant inserts an active tenant with a unique slug.
func Tenant(t *testing.T, pool *pgxpool.Pool) *models.Tenant {
	t.Helper()
	suffix := strings.Split(uuid.NewString(), "-")[0]
	tenant := &models.Tenant{Name: "Test Care " + suffix, Status: models.TenantStatusActive}
	tenant.Prepare()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO tenants (id, name, slug, status) VALUES ($1, $2, $3, $4)`,
		tenant.ID, tenant.Name, tenant.Slug, tenant.Status)
	if err != nil {
		t.Fatalf("insert tenant: %v", err)
	}
	return tenant
}
