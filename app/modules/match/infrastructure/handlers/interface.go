package matchhandlers

import (
	"context"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	chatevents "github.com/Black-And-White-Club/lockout-bot/app/events/chat"
	matchevents "github.com/Black-And-White-Club/lockout-bot/app/events/match"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
)

// Handlers handles match requests and the inbound chat stream.
type Handlers interface {
	HandleDuelRequested(ctx context.Context, payload *matchevents.DuelRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleLockoutRequested(ctx context.Context, payload *matchevents.LockoutRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleTriggerRequested(ctx context.Context, payload *matchevents.TriggerRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleStatusRequested(ctx context.Context, payload *matchevents.StatusRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleChatMessage(ctx context.Context, payload *chatevents.MessageReceivedPayloadV1) ([]handlerwrapper.Result, error)
}

// MessageSink receives inbound chat messages.
type MessageSink interface {
	Publish(msg chat.Message)
}

var _ MessageSink = (*chat.Hub)(nil)
