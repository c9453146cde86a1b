package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	registrymigrations "github.com/Black-And-White-Club/lockout-bot/app/modules/registry/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/Black-And-White-Club/lockout-bot/integration_tests/containers"
)

// TestEnvironment holds the containers and clients shared by integration tests.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and NATS, applies the registry
// migrations and creates the default streams.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	t.Cleanup(env.Cleanup)

	if err := env.setup(ctx); err != nil {
		t.Fatalf("failed to set up test environment: %v", err)
	}
	return env
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return err
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return err
	}
	env.NatsContainer = natsContainer

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bun.NewDB(sqlDB, pgdialect.New())

	if err := runMigrations(ctx, env.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
	}
	env.Config.ApplyDefaults()

	bus, err := eventbus.NewEventBus(ctx, natsURL, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create EventBus: %w", err)
	}
	env.EventBus = bus

	return eventbus.InitializeStreams(ctx, bus, eventbus.DefaultStreams, env.Logger)
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, registrymigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate registry: %w", err)
	}
	return nil
}

// ResetDatabase empties the registry tables.
func (env *TestEnvironment) ResetDatabase(ctx context.Context) error {
	_, err := env.DB.ExecContext(ctx, "TRUNCATE TABLE participants, matches")
	return err
}

// Cleanup closes clients and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.DB != nil {
		if err := env.DB.Close(); err != nil {
			log.Printf("Error closing DB: %v", err)
		}
	}

	ctx := context.Background()
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
	env.CancelContext()
}
