package matchrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	chatevents "github.com/Black-And-White-Club/lockout-bot/app/events/chat"
	matchevents "github.com/Black-And-White-Club/lockout-bot/app/events/match"
	matchhandlers "github.com/Black-And-White-Club/lockout-bot/app/modules/match/infrastructure/handlers"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// MatchRouter handles Watermill handler registration for match events.
type MatchRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewMatchRouter creates a new MatchRouter.
func NewMatchRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *MatchRouter {
	return &MatchRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *MatchRouter) Configure(_ context.Context, handlers matchhandlers.Handlers) error {
	r.logger.Info("Registering match module handlers",
		slog.String("duel_subject", matchevents.DuelRequestedV1),
		slog.String("lockout_subject", matchevents.LockoutRequestedV1),
		slog.String("chat_subject", chatevents.MessageReceivedV1),
	)

	registerHandler(r, matchevents.DuelRequestedV1, handlers.HandleDuelRequested)
	registerHandler(r, matchevents.LockoutRequestedV1, handlers.HandleLockoutRequested)
	registerHandler(r, matchevents.TriggerRequestedV1, handlers.HandleTriggerRequested)
	registerHandler(r, matchevents.StatusRequestedV1, handlers.HandleStatusRequested)
	registerHandler(r, chatevents.MessageReceivedV1, handlers.HandleChatMessage)
	return nil
}

func registerHandler[T any](
	r *MatchRouter,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "match." + topic

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
func (r *MatchRouter) Close() error {
	return r.router.Close()
}
