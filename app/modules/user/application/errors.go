package userservice

import (
	"errors"
	"fmt"
	"time"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
)

// Domain errors for the user service.
// These are answers to the caller, not faults.
var (
	// ErrInvalidHandle indicates an empty handle was provided.
	ErrInvalidHandle = errors.New("handle cannot be empty")

	// ErrNoSubmission indicates the judge returned no submission to verify.
	ErrNoSubmission = errors.New("no submission found")

	// ErrWrongVerdict indicates the latest submission is not a compilation error.
	ErrWrongVerdict = errors.New("latest submission is not a compilation error")

	// ErrWrongProblem indicates the latest submission targets another problem.
	ErrWrongProblem = errors.New("latest submission is for another problem")

	// ErrNoChallenge indicates the participant has no outstanding challenge.
	ErrNoChallenge = errors.New("no active challenge")

	// ErrShuttingDown indicates the service no longer accepts background work.
	ErrShuttingDown = errors.New("user service is shutting down")
)

// ActiveChallengeError is returned when a participant asks for a challenge
// while one is still outstanding.
type ActiveChallengeError struct {
	Challenge matchdomain.Challenge
}

func (e *ActiveChallengeError) Error() string {
	return fmt.Sprintf("challenge %s is still active", e.Challenge.Problem.Key())
}

// SkipTooEarlyError is returned when a challenge is skipped before the
// cooldown has passed.
type SkipTooEarlyError struct {
	Remaining time.Duration
}

func (e *SkipTooEarlyError) Error() string {
	return fmt.Sprintf("challenge can be skipped in %s", e.Remaining)
}
