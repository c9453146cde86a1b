// Package matchevents defines the match subjects and payloads.
package matchevents

const (
	// DuelRequestedV1 starts a duel negotiation.
	DuelRequestedV1 = "match.duel.requested.v1"
	// LockoutRequestedV1 starts a lockout negotiation.
	LockoutRequestedV1 = "match.lockout.requested.v1"
	// TriggerRequestedV1 routes a control token to the caller's active match.
	TriggerRequestedV1 = "match.trigger.requested.v1"
	// StatusRequestedV1 shows the caller's active match.
	StatusRequestedV1 = "match.status.requested.v1"

	// MatchStartedV1 is published when a match becomes ACTIVE.
	MatchStartedV1 = "match.started.v1"
	// MatchFinishedV1 is published when a match reaches a terminal state.
	MatchFinishedV1 = "match.finished.v1"
)

// DuelRequestedPayloadV1 requests a duel.
type DuelRequestedPayloadV1 struct {
	ChannelID   string   `json:"channel_id"`
	InitiatorID string   `json:"initiator_id"`
	InviteeIDs  []string `json:"invitee_ids"`
	RatingHint  *int     `json:"rating_hint,omitempty"`
}

// LockoutRequestedPayloadV1 requests a lockout. Zero values select the configured defaults.
type LockoutRequestedPayloadV1 struct {
	ChannelID       string   `json:"channel_id"`
	InitiatorID     string   `json:"initiator_id"`
	InviteeIDs      []string `json:"invitee_ids"`
	ProblemCount    int      `json:"problem_count,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	RatingHint      *int     `json:"rating_hint,omitempty"`
	Increment       *int     `json:"increment,omitempty"`
}

// TriggerRequestedPayloadV1 carries a control token typed by a participant.
type TriggerRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
}

// StatusRequestedPayloadV1 asks for the caller's active match.
type StatusRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
}

// ProblemRefV1 identifies an assigned problem.
type ProblemRefV1 struct {
	ContestID int    `json:"contest_id"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
}

// MatchStartedPayloadV1 describes a freshly created match.
type MatchStartedPayloadV1 struct {
	MatchID  int            `json:"match_id"`
	Kind     string         `json:"kind"`
	Roster   []string       `json:"roster"`
	Problems []ProblemRefV1 `json:"problems"`
}

// MatchFinishedPayloadV1 describes a terminal transition.
type MatchFinishedPayloadV1 struct {
	MatchID  int     `json:"match_id"`
	Kind     string  `json:"kind"`
	State    string  `json:"state"`
	WinnerID *string `json:"winner_id,omitempty"`
}
