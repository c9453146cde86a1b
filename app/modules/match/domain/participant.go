package matchdomain

import (
	"time"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// Participant is a registered user. MatchID is set iff the participant is on
// the roster of exactly one active match.
type Participant struct {
	UserID         string     `json:"user_id"`
	Handle         string     `json:"handle"`
	ChallengeScore int        `json:"challenge_score"`
	Challenge      *Challenge `json:"challenge,omitempty"`
	MatchID        *MatchID   `json:"match_id,omitempty"`
}

// Challenge is an outstanding untimed practice problem.
type Challenge struct {
	Problem    problemdomain.Problem `json:"problem"`
	Rating     int                   `json:"rating"`
	AssignedAt time.Time             `json:"assigned_at"`
}

// InMatch reports whether the participant holds a match reference.
func (p Participant) InMatch() bool {
	return p.MatchID != nil
}

// Clone returns a deep copy.
func (p Participant) Clone() Participant {
	out := p
	if p.Challenge != nil {
		c := *p.Challenge
		out.Challenge = &c
	}
	if p.MatchID != nil {
		id := *p.MatchID
		out.MatchID = &id
	}
	return out
}
