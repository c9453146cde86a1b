package userhandlers

import (
	"context"

	userevents "github.com/Black-And-White-Club/lockout-bot/app/events/user"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
)

// Handlers handles registration and challenge requests.
type Handlers interface {
	HandleRegisterRequested(ctx context.Context, payload *userevents.HandleRegisterRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleChallengeRequested(ctx context.Context, payload *userevents.ChallengeRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleChallengeCompleted(ctx context.Context, payload *userevents.ChallengeCompletedPayloadV1) ([]handlerwrapper.Result, error)
	HandleChallengeSkipRequested(ctx context.Context, payload *userevents.ChallengeSkipRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
