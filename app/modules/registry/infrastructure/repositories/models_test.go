package registrydb

import (
	"encoding/json"
	"testing"
	"time"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleState() registry.State {
	created := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	lockoutID := matchdomain.MatchID(0)
	duelID := matchdomain.MatchID(2)

	return registry.State{
		Participants: []matchdomain.Participant{
			{UserID: "1", Handle: "tourist", MatchID: &lockoutID},
			{UserID: "2", Handle: "petr", MatchID: &lockoutID, ChallengeScore: 40},
			{UserID: "3", Handle: "jiangly", MatchID: &duelID, Challenge: &matchdomain.Challenge{
				Problem:    problemdomain.Problem{ContestID: 1900, Index: "D", Name: "Trees", Rating: problemdomain.IntPtr(2100), Tags: []string{"dp", "trees"}},
				Rating:     2100,
				AssignedAt: created,
			}},
			{UserID: "4", Handle: "ecnerwala", MatchID: &duelID},
			{UserID: "5", Handle: "idle"},
		},
		Matches: []matchdomain.Match{
			{
				ID:        lockoutID,
				Kind:      matchdomain.KindLockout,
				State:     matchdomain.StateActive,
				ChannelID: "chan-1",
				Roster: []matchdomain.Member{
					{UserID: "1", Handle: "tourist"},
					{UserID: "2", Handle: "petr"},
				},
				Problems: []problemdomain.Problem{
					{ContestID: 1, Index: "A", Rating: problemdomain.IntPtr(1100)},
					{ContestID: 2, Index: "B", Rating: problemdomain.IntPtr(1200)},
				},
				CreatedAt:      created,
				Duration:       90 * time.Minute,
				Scores:         []int{100, 0},
				PointValues:    []int{0, 200},
				AnnouncementID: "a-1",
			},
			{
				ID:        duelID,
				Kind:      matchdomain.KindDuel,
				State:     matchdomain.StateActive,
				ChannelID: "chan-2",
				Roster: []matchdomain.Member{
					{UserID: "3", Handle: "jiangly"},
					{UserID: "4", Handle: "ecnerwala"},
				},
				Problems:  []problemdomain.Problem{{ContestID: 3, Index: "C", Name: "Duel", Rating: problemdomain.IntPtr(1500)}},
				CreatedAt: created.Add(time.Minute),
				Duration:  time.Hour,
			},
		},
	}
}

func TestRowsRoundTrip(t *testing.T) {
	want := sampleState()

	participants, matches := toRows(want, time.Now())
	got := fromRows(participants, matches)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

// TestJSONColumnsRoundTrip checks the jsonb columns survive encoding, as they
// would through Postgres.
func TestJSONColumnsRoundTrip(t *testing.T) {
	want := sampleState()
	participants, matches := toRows(want, time.Now())

	raw, err := json.Marshal(struct {
		P []*ParticipantRow
		M []*MatchRow
	}{participants, matches})
	require.NoError(t, err)

	var decoded struct {
		P []*ParticipantRow
		M []*MatchRow
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	if diff := cmp.Diff(want, fromRows(decoded.P, decoded.M)); diff != "" {
		t.Errorf("state mismatch after json (-want +got):\n%s", diff)
	}
}
