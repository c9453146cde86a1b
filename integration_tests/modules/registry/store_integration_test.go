//go:build integration

package registry_integration_tests

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	registrydb "github.com/Black-And-White-Club/lockout-bot/app/modules/registry/infrastructure/repositories"
	"github.com/Black-And-White-Club/lockout-bot/integration_tests/testutils"
)

func lockoutState() registry.State {
	created := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	id := matchdomain.MatchID(0)

	return registry.State{
		Participants: []matchdomain.Participant{
			{UserID: "1", Handle: "tourist", MatchID: &id},
			{UserID: "2", Handle: "Petr", MatchID: &id, ChallengeScore: 15},
			{UserID: "3", Handle: "jiangly", Challenge: &matchdomain.Challenge{
				Problem:    problemdomain.Problem{ContestID: 1900, Index: "D", Name: "Trees", Rating: problemdomain.IntPtr(2100), Tags: []string{"dp"}},
				Rating:     2100,
				AssignedAt: created,
			}},
		},
		Matches: []matchdomain.Match{{
			ID:        id,
			Kind:      matchdomain.KindLockout,
			State:     matchdomain.StateActive,
			ChannelID: "chan-1",
			Roster: []matchdomain.Member{
				{UserID: "1", Handle: "tourist"},
				{UserID: "2", Handle: "Petr"},
			},
			Problems: []problemdomain.Problem{
				{ContestID: 1, Index: "A", Name: "First", Rating: problemdomain.IntPtr(1100)},
				{ContestID: 2, Index: "B", Name: "Second", Rating: problemdomain.IntPtr(1200)},
			},
			CreatedAt:      created,
			Duration:       90 * time.Minute,
			Scores:         []int{100, 0},
			PointValues:    []int{0, 200},
			AnnouncementID: "ann-1",
		}},
	}
}

func TestStore_SaveLoad(t *testing.T) {
	env := testutils.NewTestEnvironment(t)

	tests := []struct {
		name  string
		saves []registry.State
	}{
		{
			name:  "snapshot round trips",
			saves: []registry.State{lockoutState()},
		},
		{
			name: "closed match and its references are pruned",
			saves: []registry.State{
				lockoutState(),
				{
					Participants: []matchdomain.Participant{
						{UserID: "1", Handle: "tourist"},
						{UserID: "2", Handle: "Petr", ChallengeScore: 15},
					},
				},
			},
		},
		{
			name:  "empty snapshot clears the tables",
			saves: []registry.State{lockoutState(), {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := env.Ctx
			require.NoError(t, env.ResetDatabase(ctx))
			store := registrydb.NewStore(env.DB)

			for _, st := range tt.saves {
				require.NoError(t, store.Save(ctx, st))
			}

			got, err := store.Load(ctx)
			require.NoError(t, err)

			want := tt.saves[len(tt.saves)-1]
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("stored state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_HandleIsUniqueIgnoringCase(t *testing.T) {
	env := testutils.NewTestEnvironment(t)
	ctx := env.Ctx
	store := registrydb.NewStore(env.DB)

	err := store.Save(ctx, registry.State{
		Participants: []matchdomain.Participant{
			{UserID: "1", Handle: "tourist"},
			{UserID: "2", Handle: "TOURIST"},
		},
	})
	require.Error(t, err)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got.Participants)
}

// TestRegistry_ReloadsFromPostgres registers users and opens a match through
// one registry, then loads a fresh registry from the same tables.
func TestRegistry_ReloadsFromPostgres(t *testing.T) {
	env := testutils.NewTestEnvironment(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first := registry.New(registrydb.NewStore(env.DB), 5*time.Second, logger)
	require.NoError(t, first.Load(ctx))
	require.NoError(t, first.Register(ctx, matchdomain.Participant{UserID: "1", Handle: "tourist"}))
	require.NoError(t, first.Register(ctx, matchdomain.Participant{UserID: "2", Handle: "petr"}))

	res, busy := first.Reserve([]string{"1", "2"})
	require.Empty(t, busy)
	m, err := first.CreateMatch(ctx, res, matchdomain.Match{
		Kind:      matchdomain.KindDuel,
		ChannelID: "chan-1",
		Roster: []matchdomain.Member{
			{UserID: "1", Handle: "tourist"},
			{UserID: "2", Handle: "petr"},
		},
		Problems:  []problemdomain.Problem{{ContestID: 4, Index: "A", Name: "Watermelon", Rating: problemdomain.IntPtr(800)}},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Duration:  time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, first.Flush(ctx))

	second := registry.New(registrydb.NewStore(env.DB), 5*time.Second, logger)
	require.NoError(t, second.Load(ctx))

	p, ok := second.ParticipantByHandle("PETR")
	require.True(t, ok)
	require.Equal(t, "2", p.UserID)

	active, ok := second.MatchOf("1")
	require.True(t, ok)
	require.Equal(t, m.ID, active.ID)
	require.Len(t, second.ActiveMatches(), 1)
}
