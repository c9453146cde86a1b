package matchservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
)

// ProblemSource is the part of the problem service a match needs.
type ProblemSource interface {
	AssignDuel(ctx context.Context, handles []string, ratingHint *int) (problemdomain.Problem, error)
	AssignLockout(ctx context.Context, handles []string, spec problemservice.LockoutSpec) (*problemservice.LockoutSet, error)
	Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error)
	CompletionTime(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error)
	ProblemURL(problem problemdomain.Problem) string
}

// DuelRequest starts a duel negotiation.
type DuelRequest struct {
	ChannelID   string
	InitiatorID string
	InviteeIDs  []string
	RatingHint  *int
}

// LockoutRequest starts a lockout negotiation. Zero values select the configured defaults.
type LockoutRequest struct {
	ChannelID    string
	InitiatorID  string
	InviteeIDs   []string
	ProblemCount int
	Duration     time.Duration
	RatingHint   *int
	Increment    *int
}

// TriggerRequest routes a control token to the user's active match.
type TriggerRequest struct {
	ChannelID string
	UserID    string
	Token     chat.TokenKind
}

// Result is a freshly created match and the participants left out of it.
type Result struct {
	Match    matchdomain.Match
	Excluded []*registry.BusyError
}

// Service defines the match life-cycle operations.
type Service interface {
	StartDuel(ctx context.Context, req DuelRequest) (*Result, error)
	StartLockout(ctx context.Context, req LockoutRequest) (*Result, error)
	Trigger(ctx context.Context, req TriggerRequest) error
	Status(ctx context.Context, channelID, userID string) (chat.Announcement, error)
	Resume(ctx context.Context) error
	// Go runs fn in the background until it returns or the service shuts down.
	Go(ctx context.Context, fn func(ctx context.Context)) error
	Shutdown()
	Wait()
}
