package matchdomain

import (
	"fmt"
	"slices"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// MatchID is the registry-minted identity of a match.
type MatchID int

func (id MatchID) String() string {
	return fmt.Sprintf("#%d", int(id))
}

// Kind distinguishes duels from lockouts.
type Kind string

const (
	KindDuel    Kind = "DUEL"
	KindLockout Kind = "LOCKOUT"
)

// Accepts reports whether token controls a match of this kind.
func (k Kind) Accepts(token chat.TokenKind) bool {
	switch k {
	case KindDuel:
		return token == chat.TokenFinish || token == chat.TokenGiveUp
	case KindLockout:
		return token == chat.TokenUpdate || token == chat.TokenGiveUp
	default:
		return false
	}
}

// State is a match life-cycle state.
type State string

const (
	StateAssigning State = "ASSIGNING"
	StateActive    State = "ACTIVE"
	StateWon       State = "WON"
	StateDrawn     State = "DRAWN"
	StateAbandoned State = "ABANDONED"
	StateClosed    State = "CLOSED"
)

// Terminal reports whether no further transition except CLOSED is possible.
func (s State) Terminal() bool {
	switch s {
	case StateWon, StateDrawn, StateAbandoned, StateClosed:
		return true
	default:
		return false
	}
}

// Member is one roster entry.
type Member struct {
	UserID string `json:"user_id"`
	Handle string `json:"handle"`
}

// Match is one duel or lockout. For lockouts Scores is aligned with Roster and
// PointValues with Problems; a zero point value marks a claimed problem.
type Match struct {
	ID             MatchID                 `json:"id"`
	Kind           Kind                    `json:"kind"`
	State          State                   `json:"state"`
	ChannelID      string                  `json:"channel_id"`
	Roster         []Member                `json:"roster"`
	Problems       []problemdomain.Problem `json:"problems"`
	CreatedAt      time.Time               `json:"created_at"`
	Duration       time.Duration           `json:"duration"`
	Scores         []int                   `json:"scores,omitempty"`
	PointValues    []int                   `json:"point_values,omitempty"`
	AnnouncementID string                  `json:"announcement_id,omitempty"`
	WinnerID       string                  `json:"winner_id,omitempty"`
}

// NewDuel drafts a duel over one problem.
func NewDuel(channelID string, roster []Member, problem problemdomain.Problem, createdAt time.Time, duration time.Duration) Match {
	return Match{
		Kind:      KindDuel,
		State:     StateAssigning,
		ChannelID: channelID,
		Roster:    slices.Clone(roster),
		Problems:  []problemdomain.Problem{problem},
		CreatedAt: createdAt,
		Duration:  duration,
	}
}

// NewLockout drafts a lockout over a problem ladder worth points.
func NewLockout(channelID string, roster []Member, problems []problemdomain.Problem, points []int, createdAt time.Time, duration time.Duration) Match {
	return Match{
		Kind:        KindLockout,
		State:       StateAssigning,
		ChannelID:   channelID,
		Roster:      slices.Clone(roster),
		Problems:    slices.Clone(problems),
		CreatedAt:   createdAt,
		Duration:    duration,
		Scores:      make([]int, len(roster)),
		PointValues: slices.Clone(points),
	}
}

// Deadline is the instant the match's time budget runs out.
func (m Match) Deadline() time.Time {
	return m.CreatedAt.Add(m.Duration)
}

// Remaining is the time budget left at now, never negative.
func (m Match) Remaining(now time.Time) time.Duration {
	return max(0, m.Deadline().Sub(now))
}

// Expired reports whether the time budget is exhausted at now.
func (m Match) Expired(now time.Time) bool {
	return !now.Before(m.Deadline())
}

// MemberIndex returns the roster position of userID, or -1.
func (m Match) MemberIndex(userID string) int {
	return slices.IndexFunc(m.Roster, func(mb Member) bool { return mb.UserID == userID })
}

// HasMember reports whether userID is on the roster.
func (m Match) HasMember(userID string) bool {
	return m.MemberIndex(userID) >= 0
}

// UserIDs lists the roster in order.
func (m Match) UserIDs() []string {
	ids := make([]string, len(m.Roster))
	for i, mb := range m.Roster {
		ids[i] = mb.UserID
	}
	return ids
}

// Opponent returns the first roster member other than userID.
func (m Match) Opponent(userID string) (Member, bool) {
	for _, mb := range m.Roster {
		if mb.UserID != userID {
			return mb, true
		}
	}
	return Member{}, false
}

// Clone returns a deep copy.
func (m Match) Clone() Match {
	out := m
	out.Roster = slices.Clone(m.Roster)
	out.Problems = slices.Clone(m.Problems)
	out.Scores = slices.Clone(m.Scores)
	out.PointValues = slices.Clone(m.PointValues)
	return out
}

// Win moves the match to WON with userID as winner.
func (m *Match) Win(userID string) {
	m.State = StateWon
	m.WinnerID = userID
}

// RemoveMember drops userID from the roster, and from the score vector at the
// same index so the remaining entries stay aligned.
func (m *Match) RemoveMember(userID string) error {
	i := m.MemberIndex(userID)
	if i < 0 {
		return ErrNotMember
	}
	m.Roster = slices.Delete(m.Roster, i, i+1)
	if i < len(m.Scores) {
		m.Scores = slices.Delete(m.Scores, i, i+1)
	}
	return nil
}
