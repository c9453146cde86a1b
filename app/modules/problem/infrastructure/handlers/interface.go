package problemhandlers

import (
	"context"

	problemevents "github.com/Black-And-White-Club/lockout-bot/app/events/problem"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
)

// Handlers handles practice recommendation requests.
type Handlers interface {
	HandlePracticeRequested(ctx context.Context, payload *problemevents.PracticeRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleICPCRequested(ctx context.Context, payload *problemevents.ICPCRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// HandleResolver maps a chat user to their registered judge handle.
type HandleResolver interface {
	Handle(userID string) (string, bool)
}
