package registry

import (
	"errors"
	"fmt"
	"time"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
)

var (
	// ErrNotRegistered means the user has no participant record.
	ErrNotRegistered = errors.New("user is not registered")
	// ErrAlreadyRegistered means the user already has a handle.
	ErrAlreadyRegistered = errors.New("user is already registered")
	// ErrHandleTaken means another user registered the handle.
	ErrHandleTaken = errors.New("handle is registered to another user")
	// ErrMatchNotFound means no active match has the id.
	ErrMatchNotFound = errors.New("match not found")
	// ErrInvariantViolation means a participant's match reference disagrees with the match table.
	ErrInvariantViolation = errors.New("participant match invariant violated")
	// ErrReservationReleased means a reservation was used after release.
	ErrReservationReleased = errors.New("reservation already released")
)

// BusyError reports a participant excluded from a roster because it is
// already committed elsewhere. MatchID is nil while another negotiation holds
// the participant.
type BusyError struct {
	UserID    string
	MatchID   *matchdomain.MatchID
	Remaining time.Duration
}

func (e *BusyError) Error() string {
	if e.MatchID == nil {
		return fmt.Sprintf("user %s is joining another match", e.UserID)
	}
	return fmt.Sprintf("user %s is in match %s for another %s", e.UserID, *e.MatchID, e.Remaining.Round(time.Second))
}

// InvariantError details an ErrInvariantViolation.
type InvariantError struct {
	UserID  string
	MatchID *matchdomain.MatchID
	Detail  string
}

func (e *InvariantError) Error() string {
	if e.MatchID == nil {
		return fmt.Sprintf("%s: user %s: %s", ErrInvariantViolation, e.UserID, e.Detail)
	}
	return fmt.Sprintf("%s: user %s, match %s: %s", ErrInvariantViolation, e.UserID, *e.MatchID, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}
