package match

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	matchservice "github.com/Black-And-White-Club/lockout-bot/app/modules/match/application"
	matchhandlers "github.com/Black-And-White-Club/lockout-bot/app/modules/match/infrastructure/handlers"
	matchrouter "github.com/Black-And-White-Club/lockout-bot/app/modules/match/infrastructure/router"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module represents the match module.
type Module struct {
	MatchService  matchservice.Service
	MatchRouter   *matchrouter.MatchRouter
	hub           *chat.Hub
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewMatchModule creates and initializes a new match module.
func NewMatchModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	metrics observability.MatchMetrics,
	eventBus eventbus.EventBus,
	router *message.Router,
	reg *registry.Registry,
	problems matchservice.ProblemSource,
	hub *chat.Hub,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "match.NewMatchModule initializing")

	announcer := chat.NewEventAnnouncer(eventBus, logger)
	service := matchservice.NewMatchService(
		reg,
		problems,
		hub,
		announcer,
		eventBus,
		cfg.Engine,
		logger,
		metrics,
		tracer,
	)

	handlers := matchhandlers.NewMatchHandlers(service, hub, logger, tracer)

	matchRouter := matchrouter.NewMatchRouter(logger, router, eventBus, eventBus, tracer)
	if err := matchRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure match router: %w", err)
	}

	return &Module{
		MatchService:  service,
		MatchRouter:   matchRouter,
		hub:           hub,
		observability: obs,
	}, nil
}

// Run resumes the stored matches and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting match module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.MatchService.Resume(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to resume matches", slog.Any("error", err))
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Match module goroutine stopped")
}

// Close stops every observer and negotiation, then the router.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping match module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.MatchService != nil {
		m.MatchService.Shutdown()
		m.MatchService.Wait()
	}
	if m.hub != nil {
		if open := m.hub.Subscribers(); open > 0 {
			logger.Warn("Chat subscriptions left open after shutdown", slog.Int("count", open))
		}
	}

	if m.MatchRouter != nil {
		if err := m.MatchRouter.Close(); err != nil {
			return fmt.Errorf("error closing MatchRouter: %w", err)
		}
	}

	logger.Info("Match module stopped")
	return nil
}
