package problem

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	problemcache "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/infrastructure/cache"
	problemhandlers "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/infrastructure/handlers"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/problem/infrastructure/judge"
	problemrouter "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/infrastructure/router"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

// Module represents the problem module.
type Module struct {
	ProblemService problemservice.Service
	ProblemRouter  *problemrouter.ProblemRouter
	redisClient    redis.UniversalClient
	cancelFunc     context.CancelFunc
	observability  observability.Observability
}

// NewProblemModule creates and initializes a new problem module.
func NewProblemModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	metrics *observability.PrometheusMetrics,
	eventBus eventbus.EventBus,
	router *message.Router,
	users problemhandlers.HandleResolver,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "problem.NewProblemModule initializing")

	client := judge.NewClient(cfg.Judge, metrics, logger)

	var (
		catalog     problemservice.CatalogSource = client
		redisClient redis.UniversalClient
	)
	if cfg.Redis.Addr != "" {
		rc, err := problemcache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.WarnContext(ctx, "Catalog cache disabled, Redis unreachable",
				slog.String("addr", cfg.Redis.Addr),
				slog.Any("error", err),
			)
		} else {
			redisClient = rc
			catalog = problemcache.New(rc, client, cfg.Redis.CatalogTTL, metrics, logger)
		}
	}

	selector := problemdomain.NewRandomSelector(cfg.Engine.RandomizeConstant)
	service := problemservice.NewProblemService(
		catalog,
		client,
		selector,
		cfg.Engine,
		cfg.Judge.ProblemBaseURL,
		logger,
		metrics,
		tracer,
	)

	handlers := problemhandlers.NewProblemHandlers(service, users, logger, tracer)

	problemRouter := problemrouter.NewProblemRouter(logger, router, eventBus, eventBus, tracer)
	if err := problemRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure problem router: %w", err)
	}

	return &Module{
		ProblemService: service,
		ProblemRouter:  problemRouter,
		redisClient:    redisClient,
		observability:  obs,
	}, nil
}

// Run starts the problem module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting problem module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Problem module goroutine stopped")
}

// Close shuts down the problem module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping problem module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.redisClient != nil {
		if err := m.redisClient.Close(); err != nil {
			logger.Error("Error closing Redis client", slog.Any("error", err))
		}
	}

	if m.ProblemRouter != nil {
		if err := m.ProblemRouter.Close(); err != nil {
			return fmt.Errorf("error closing ProblemRouter: %w", err)
		}
	}

	logger.Info("Problem module stopped")
	return nil
}
