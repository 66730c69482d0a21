// Package testutil provides test helpers including container management.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/voltfall/tactics/internal/config"
	"github.com/voltfall/tactics/internal/storage/postgres"
)

// reportsSchema mirrors the migrations in migrations/. Tests apply it
// directly so they do not need the migrate tool.
const reportsSchema = `
	CREATE TABLE IF NOT EXISTS encounter_reports (
		id          BIGSERIAL    PRIMARY KEY,
		scenario_id VARCHAR(128) NOT NULL,
		seed        BIGINT       NOT NULL,
		policy      VARCHAR(128) NOT NULL,
		outcome     VARCHAR(32)  NOT NULL,
		rounds      INTEGER      NOT NULL,
		survivors   TEXT[]       NOT NULL DEFAULT '{}',
		casualties  TEXT[]       NOT NULL DEFAULT '{}',
		combat_log  TEXT[]       NOT NULL DEFAULT '{}',
		duration_ms BIGINT       NOT NULL,
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_encounter_reports_scenario
		ON encounter_reports (scenario_id, created_at);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("getting mapped port: %w", err)
	}

	dbCfg := config.DatabaseConfig{
		Enabled:         true,
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to test postgres: %w", err)
	}

	return &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}, nil
}

// NewPostgresContainer starts a dedicated PostgreSQL test container and
// returns a connected Pool. Use this for tests that need an isolated
// database; most tests should share one via NewPool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	pc, err := startPostgres(ctx)
	if err != nil {
		t.Fatalf("starting test postgres: %v [%s]", err, time.Since(start))
	}
	t.Logf("postgres container started [%s]", time.Since(start))

	t.Cleanup(func() {
		pc.Pool.Close()
		_ = pc.container.Terminate(ctx)
	})

	return pc
}

// applySchema creates the report tables directly, without the migrate tool.
func (pc *PostgresContainer) applySchema(ctx context.Context) error {
	if _, err := pc.RawPool.Exec(ctx, reportsSchema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The encounter_reports table exists in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	start := time.Now()
	if err := pc.applySchema(context.Background()); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}

var (
	sharedOnce sync.Once
	sharedPC   *PostgresContainer
	sharedErr  error
)

// NewPool returns a pgx pool backed by a PostgreSQL container shared across
// the whole test binary, with the schema already applied. The container is
// left for the testcontainers reaper to reclaim when the process exits.
//
// Precondition: Docker must be available.
// Postcondition: Returns a connected pool with the schema applied,
// or fails the test.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	sharedOnce.Do(func() {
		ctx := context.Background()
		pc, err := startPostgres(ctx)
		if err != nil {
			sharedErr = err
			return
		}
		if err := pc.applySchema(ctx); err != nil {
			sharedErr = err
			return
		}
		sharedPC = pc
	})
	if sharedErr != nil {
		t.Fatalf("starting shared test postgres: %v", sharedErr)
	}
	if err := sharedPC.Pool.Health(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("shared test postgres stopped answering: %v", err)
	}
	return sharedPC.RawPool
}
