// Package userevents defines the participant subjects and payloads.
package userevents

const (
	// HandleRegisterRequestedV1 links a chat user to a judge handle.
	HandleRegisterRequestedV1 = "user.handle.register.requested.v1"
	// ChallengeRequestedV1 assigns an untimed challenge problem.
	ChallengeRequestedV1 = "user.challenge.requested.v1"
	// ChallengeCompletedV1 claims the outstanding challenge.
	ChallengeCompletedV1 = "user.challenge.completed.v1"
	// ChallengeSkipRequestedV1 drops the outstanding challenge.
	ChallengeSkipRequestedV1 = "user.challenge.skip.requested.v1"
)

// HandleRegisterRequestedPayloadV1 requests handle registration.
type HandleRegisterRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Handle    string `json:"handle"`
}

// ChallengeRequestedPayloadV1 requests a challenge relative to the caller's rating.
type ChallengeRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Delta     *int   `json:"delta,omitempty"`
	DeltaMax  *int   `json:"delta_max,omitempty"`
}

// ChallengeCompletedPayloadV1 claims a challenge.
type ChallengeCompletedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
}

// ChallengeSkipRequestedPayloadV1 drops a challenge.
type ChallengeSkipRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Force     bool   `json:"force,omitempty"`
}
