package userservice

import (
	"context"
	"time"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// ProblemSource is the part of the problem service the user service needs.
type ProblemSource interface {
	LookupHandle(ctx context.Context, handle string) (string, error)
	RandomProblem(ctx context.Context) (problemdomain.Problem, error)
	Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error)
	Rating(ctx context.Context, handle string) (int, error)
	Practice(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error)
	CompletionTime(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error)
	ProblemURL(problem problemdomain.Problem) string
}

// RegisterRequest links a chat user to a judge handle.
type RegisterRequest struct {
	ChannelID string
	UserID    string
	Handle    string
}

// ChallengeRequest asks for a challenge at the participant's rating plus
// Delta, or a uniform draw in [Delta, DeltaMax] above it.
type ChallengeRequest struct {
	UserID   string
	Delta    *int
	DeltaMax *int
}

// Completion is a claimed challenge.
type Completion struct {
	Challenge matchdomain.Challenge
	Points    int
	Score     int
}

// Service defines participant registration and the challenge lifecycle.
type Service interface {
	// RegisterHandle verifies handle ownership and registers the participant.
	// It blocks for the registration window and announces its own outcome.
	RegisterHandle(ctx context.Context, req RegisterRequest) (matchdomain.Participant, error)

	// Challenge assigns an untimed problem relative to the participant's rating.
	Challenge(ctx context.Context, req ChallengeRequest) (matchdomain.Challenge, error)

	// CompleteChallenge awards points for a solved challenge.
	CompleteChallenge(ctx context.Context, userID string) (*Completion, error)

	// SkipChallenge drops the outstanding challenge.
	SkipChallenge(ctx context.Context, userID string, force bool) (matchdomain.Challenge, error)

	// ProblemURL links to a problem statement.
	ProblemURL(problem problemdomain.Problem) string

	// Go runs fn in the background until it returns or Shutdown is called.
	Go(ctx context.Context, fn func(ctx context.Context)) error
	Shutdown()
	Wait()
}
