// Package problemevents defines the practice recommendation subjects and payloads.
package problemevents

const (
	// PracticeRequestedV1 recommends one unsolved problem.
	PracticeRequestedV1 = "problem.practice.requested.v1"
	// ICPCRequestedV1 recommends problems from an ICPC-style contest.
	ICPCRequestedV1 = "problem.icpc.requested.v1"
)

// PracticeRequestedPayloadV1 requests a practice problem. A RatingMax draws a
// random rating in [Rating, RatingMax].
type PracticeRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Rating    *int   `json:"rating,omitempty"`
	RatingMax *int   `json:"rating_max,omitempty"`
}

// ICPCRequestedPayloadV1 requests Count problems from one ICPC contest.
type ICPCRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Count     int    `json:"count,omitempty"`
}
