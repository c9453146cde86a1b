package matchservice

import "errors"

var (
	// ErrSelfInvite means the initiator listed itself as an invitee.
	ErrSelfInvite = errors.New("cannot invite yourself")
	// ErrNoInvitees means no invitee is a registered participant.
	ErrNoInvitees = errors.New("no registered invitees")
	// ErrCancelled means nobody accepted the invitation in time.
	ErrCancelled = errors.New("invitation cancelled, nobody accepted")
	// ErrInsufficientRoster means fewer than two participants remain after busy users are excluded.
	ErrInsufficientRoster = errors.New("not enough participants")
	// ErrNoActiveMatch means the user holds no match reference.
	ErrNoActiveMatch = errors.New("no active match")
	// ErrTokenNotAccepted means the token has no meaning for the user's match kind.
	ErrTokenNotAccepted = errors.New("token not accepted by this match")
	// ErrInvalidDuration means a lockout duration outside the allowed range.
	ErrInvalidDuration = errors.New("invalid match duration")
	// ErrShuttingDown means the service no longer accepts work.
	ErrShuttingDown = errors.New("match service is shutting down")
)
