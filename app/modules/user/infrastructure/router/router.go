package userrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	userevents "github.com/Black-And-White-Club/lockout-bot/app/events/user"
	userhandlers "github.com/Black-And-White-Club/lockout-bot/app/modules/user/infrastructure/handlers"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// UserRouter handles Watermill handler registration for registration and challenge events.
type UserRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewUserRouter creates a new UserRouter.
func NewUserRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *UserRouter {
	return &UserRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *UserRouter) Configure(_ context.Context, handlers userhandlers.Handlers) error {
	r.logger.Info("Registering user module handlers",
		slog.String("register_subject", userevents.HandleRegisterRequestedV1),
		slog.String("challenge_subject", userevents.ChallengeRequestedV1),
	)

	registerHandler(r, userevents.HandleRegisterRequestedV1, handlers.HandleRegisterRequested)
	registerHandler(r, userevents.ChallengeRequestedV1, handlers.HandleChallengeRequested)
	registerHandler(r, userevents.ChallengeCompletedV1, handlers.HandleChallengeCompleted)
	registerHandler(r, userevents.ChallengeSkipRequestedV1, handlers.HandleChallengeSkipRequested)
	return nil
}

func registerHandler[T any](
	r *UserRouter,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "user." + topic

	r.router.AddHandler(
		handlerName,
		topic,
		r.subscriber,
		eventbus.DynamicTopic,
		r.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, r.logger, r.tracer, handler),
	)
}

// Close shuts down the router.
func (r *UserRouter) Close() error {
	return r.router.Close()
}
