// Package app wires the configuration, infrastructure and modules of the
// match engine into one runnable service.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/match"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/problem"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	registrydb "github.com/Black-And-White-Club/lockout-bot/app/modules/registry/infrastructure/repositories"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/user"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// hubBuffer is the per-subscriber backlog of the chat hub.
const hubBuffer = 64

// App holds the wired service.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	Metrics       *observability.PrometheusMetrics
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	Registry      *registry.Registry
	Hub           *chat.Hub

	ProblemModule *problem.Module
	MatchModule   *match.Module
	UserModule    *user.Module
}

// Initialize connects to Postgres and NATS, restores the registry and
// builds every module.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.Config
	if cfg == nil {
		return fmt.Errorf("app config is nil")
	}
	if app.Observability.Logger == nil {
		app.Observability = observability.New(cfg.Observability)
	}
	logger := app.Observability.Logger
	app.Metrics = observability.NewPrometheusMetrics(app.Observability.Registry)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	app.DB = bun.NewDB(sqldb, pgdialect.New())
	if err := app.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	eventBus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = eventBus

	if err := eventbus.InitializeStreams(ctx, eventBus, eventbus.DefaultStreams, logger); err != nil {
		return err
	}

	router, err := newRouter(logger, app.Observability)
	if err != nil {
		return err
	}
	app.Router = router

	app.Registry = registry.New(
		registrydb.NewStore(app.DB),
		cfg.Engine.PersistTimeout,
		logger,
		registry.WithGauge(app.Metrics),
	)
	if err := app.Registry.Load(ctx); err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	app.Hub = chat.NewHub(hubBuffer, logger)

	if err := app.initializeModules(ctx); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Application initialized")
	return nil
}

func (app *App) initializeModules(ctx context.Context) error {
	problemModule, err := problem.NewProblemModule(ctx, app.Config, app.Observability, app.Metrics, app.EventBus, app.Router, app.Registry)
	if err != nil {
		return fmt.Errorf("failed to initialize problem module: %w", err)
	}
	app.ProblemModule = problemModule

	matchModule, err := match.NewMatchModule(ctx, app.Config, app.Observability, app.Metrics, app.EventBus, app.Router, app.Registry, problemModule.ProblemService, app.Hub)
	if err != nil {
		return fmt.Errorf("failed to initialize match module: %w", err)
	}
	app.MatchModule = matchModule

	userModule, err := user.NewUserModule(ctx, app.Config, app.Observability, app.Metrics, app.EventBus, app.Router, app.Registry, problemModule.ProblemService)
	if err != nil {
		return fmt.Errorf("failed to initialize user module: %w", err)
	}
	app.UserModule = userModule
	return nil
}

// Close stops the modules first so no observer is writing, then flushes the
// registry and releases the connections.
func (app *App) Close() {
	logger := app.Observability.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, m := range app.modules() {
		if err := m.Close(); err != nil {
			logger.Error("Error closing module", slog.Any("error", err))
		}
	}

	if app.Registry != nil {
		if app.Registry.Dirty() {
			logger.Warn("Registry has unsaved changes, flushing")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.Registry.Flush(ctx); err != nil {
			logger.Error("Failed to flush registry", slog.Any("error", err))
		}
		cancel()

		st := app.Registry.Snapshot()
		logger.Info("Registry state at shutdown",
			slog.Int("participants", len(st.Participants)),
			slog.Int("active_matches", len(st.Matches)),
		)
	}

	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", slog.Any("error", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Error closing database", slog.Any("error", err))
		}
	}
	logger.Info("Application shut down")
}
