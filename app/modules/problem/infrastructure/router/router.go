package problemrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	problemevents "github.com/Black-And-White-Club/lockout-bot/app/events/problem"
	problemhandlers "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/infrastructure/handlers"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// ProblemRouter handles Watermill handler registration for practice events.
type ProblemRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewProblemRouter creates a new ProblemRouter.
func NewProblemRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *ProblemRouter {
	return &ProblemRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *ProblemRouter) Configure(_ context.Context, handlers problemhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering problem module handlers",
		slog.String("practice_subject", problemevents.PracticeRequestedV1),
		slog.String("icpc_subject", problemevents.ICPCRequestedV1),
	)

	registerHandler(deps, problemevents.PracticeRequestedV1, handlers.HandlePracticeRequested)
	registerHandler(deps, problemevents.ICPCRequestedV1, handlers.HandleICPCRequested)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "problem." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		eventbus.DynamicTopic,
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler),
	)
}

// Close shuts down the router.
func (r *ProblemRouter) Close() error {
	return r.router.Close()
}
