package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	userservice "github.com/Black-And-White-Club/lockout-bot/app/modules/user/application"
	userhandlers "github.com/Black-And-White-Club/lockout-bot/app/modules/user/infrastructure/handlers"
	userrouter "github.com/Black-And-White-Club/lockout-bot/app/modules/user/infrastructure/router"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module represents the user module.
type Module struct {
	UserService   userservice.Service
	UserRouter    *userrouter.UserRouter
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewUserModule creates and initializes a new user module.
func NewUserModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	metrics observability.ServiceMetrics,
	eventBus eventbus.EventBus,
	router *message.Router,
	reg *registry.Registry,
	problems userservice.ProblemSource,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "user.NewUserModule initializing")

	announcer := chat.NewEventAnnouncer(eventBus, logger)
	service := userservice.NewUserService(reg, problems, announcer, cfg.Engine, logger, metrics, tracer)
	handlers := userhandlers.NewUserHandlers(service, logger, tracer)

	userRouter := userrouter.NewUserRouter(logger, router, eventBus, eventBus, tracer)
	if err := userRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure user router: %w", err)
	}

	return &Module{
		UserService:   service,
		UserRouter:    userRouter,
		observability: obs,
	}, nil
}

// Run starts the user module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting user module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "User module goroutine stopped")
}

// Close cancels pending registrations and shuts down the router.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping user module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.UserService != nil {
		m.UserService.Shutdown()
		m.UserService.Wait()
	}

	if m.UserRouter != nil {
		if err := m.UserRouter.Close(); err != nil {
			return fmt.Errorf("error closing UserRouter: %w", err)
		}
	}

	logger.Info("User module stopped")
	return nil
}
