package matchhandlers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	chatevents "github.com/Black-And-White-Club/lockout-bot/app/events/chat"
	matchevents "github.com/Black-And-White-Club/lockout-bot/app/events/match"
	matchservice "github.com/Black-And-White-Club/lockout-bot/app/modules/match/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestHandlers(svc *FakeMatchService, sink *FakeSink) Handlers {
	return NewMatchHandlers(
		svc,
		sink,
		slog.New(slog.DiscardHandler),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func announcement(t *testing.T, results []handlerwrapper.Result) *chatevents.AnnouncementPayloadV1 {
	t.Helper()
	require.Len(t, results, 1)
	assert.Equal(t, chatevents.AnnouncementPostV1, results[0].Topic)
	payload, ok := results[0].Payload.(*chatevents.AnnouncementPayloadV1)
	require.True(t, ok)
	return payload
}

func TestHandleDuelRequested(t *testing.T) {
	svc := NewFakeMatchService()
	var got matchservice.DuelRequest
	svc.StartDuelFunc = func(ctx context.Context, req matchservice.DuelRequest) (*matchservice.Result, error) {
		got = req
		return nil, matchservice.ErrCancelled
	}
	h := newTestHandlers(svc, &FakeSink{})

	rating := 1500
	results, err := h.HandleDuelRequested(context.Background(), &matchevents.DuelRequestedPayloadV1{
		ChannelID:   "c1",
		InitiatorID: "1",
		InviteeIDs:  []string{"2"},
		RatingHint:  &rating,
	})

	require.NoError(t, err)
	assert.Empty(t, results, "the service announces its own outcome")
	assert.Equal(t, []string{"Go", "StartDuel"}, svc.Trace())
	assert.Equal(t, "c1", got.ChannelID)
	assert.Equal(t, []string{"2"}, got.InviteeIDs)
	require.NotNil(t, got.RatingHint)
	assert.Equal(t, 1500, *got.RatingHint)
}

func TestHandleDuelRequested_ShuttingDown(t *testing.T) {
	svc := NewFakeMatchService()
	svc.GoFunc = func(ctx context.Context, fn func(ctx context.Context)) error {
		return matchservice.ErrShuttingDown
	}
	h := newTestHandlers(svc, &FakeSink{})

	results, err := h.HandleDuelRequested(context.Background(), &matchevents.DuelRequestedPayloadV1{
		ChannelID: "c1", InitiatorID: "1", InviteeIDs: []string{"2"},
	})

	require.NoError(t, err)
	out := announcement(t, results)
	assert.Equal(t, "c1", out.ChannelID)
	require.NotNil(t, out.Embed)
	assert.Equal(t, chat.ColorError, out.Embed.Color)
	assert.Equal(t, []string{"Go"}, svc.Trace())
}

func TestHandleLockoutRequested(t *testing.T) {
	svc := NewFakeMatchService()
	var got matchservice.LockoutRequest
	svc.StartLockoutFunc = func(ctx context.Context, req matchservice.LockoutRequest) (*matchservice.Result, error) {
		got = req
		return &matchservice.Result{}, nil
	}
	h := newTestHandlers(svc, &FakeSink{})

	results, err := h.HandleLockoutRequested(context.Background(), &matchevents.LockoutRequestedPayloadV1{
		ChannelID:       "c1",
		InitiatorID:     "1",
		InviteeIDs:      []string{"2", "3"},
		ProblemCount:    4,
		DurationMinutes: 45,
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, []string{"Go", "StartLockout"}, svc.Trace())
	assert.Equal(t, 45*time.Minute, got.Duration)
	assert.Equal(t, 4, got.ProblemCount)
	assert.Nil(t, got.Increment)
}

func TestHandleTriggerRequested(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		setup     func(*FakeMatchService)
		wantReply bool
		wantText  string
		wantTrace []string
	}{
		{
			name:      "routes finish",
			token:     "finish",
			setup:     func(f *FakeMatchService) {},
			wantTrace: []string{"Trigger"},
		},
		{
			name:      "unknown token",
			token:     "surrender",
			setup:     func(f *FakeMatchService) {},
			wantReply: true,
			wantText:  "Use finish, giveup or update.",
			wantTrace: []string{},
		},
		{
			name:  "no active match",
			token: "giveup",
			setup: func(f *FakeMatchService) {
				f.TriggerFunc = func(ctx context.Context, req matchservice.TriggerRequest) error {
					assert.Equal(t, chat.TokenGiveUp, req.Token)
					return matchservice.ErrNoActiveMatch
				}
			},
			wantReply: true,
			wantText:  "You are not in a match.",
			wantTrace: []string{"Trigger"},
		},
		{
			name:  "token for the other kind",
			token: "update",
			setup: func(f *FakeMatchService) {
				f.TriggerFunc = func(ctx context.Context, req matchservice.TriggerRequest) error {
					return matchservice.ErrTokenNotAccepted
				}
			},
			wantReply: true,
			wantText:  "That command does not apply to your match.",
			wantTrace: []string{"Trigger"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeMatchService()
			tt.setup(svc)
			h := newTestHandlers(svc, &FakeSink{})

			results, err := h.HandleTriggerRequested(context.Background(), &matchevents.TriggerRequestedPayloadV1{
				ChannelID: "c1", UserID: "1", Token: tt.token,
			})

			require.NoError(t, err)
			if tt.wantReply {
				out := announcement(t, results)
				require.NotNil(t, out.Embed)
				assert.Contains(t, out.Embed.Description, tt.wantText)
			} else {
				assert.Empty(t, results)
			}
			assert.Equal(t, tt.wantTrace, svc.Trace())
		})
	}
}

func TestHandleStatusRequested(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*FakeMatchService)
		wantTitle string
		wantColor int
	}{
		{
			name: "shows the match",
			setup: func(f *FakeMatchService) {
				f.StatusFunc = func(ctx context.Context, channelID, userID string) (chat.Announcement, error) {
					return chat.Announcement{ChannelID: channelID, Title: "Duel #3", Color: chat.ColorActive}, nil
				}
			},
			wantTitle: "Duel #3",
			wantColor: chat.ColorActive,
		},
		{
			name: "unregistered",
			setup: func(f *FakeMatchService) {
				f.StatusFunc = func(ctx context.Context, channelID, userID string) (chat.Announcement, error) {
					return chat.Announcement{}, registry.ErrNotRegistered
				}
			},
			wantColor: chat.ColorError,
		},
		{
			name: "judge down",
			setup: func(f *FakeMatchService) {
				f.StatusFunc = func(ctx context.Context, channelID, userID string) (chat.Announcement, error) {
					return chat.Announcement{}, problemdomain.ErrJudgeUnavailable
				}
			},
			wantColor: chat.ColorError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeMatchService()
			tt.setup(svc)
			h := newTestHandlers(svc, &FakeSink{})

			results, err := h.HandleStatusRequested(context.Background(), &matchevents.StatusRequestedPayloadV1{
				ChannelID: "c1", UserID: "1",
			})

			require.NoError(t, err)
			out := announcement(t, results)
			assert.Equal(t, "c1", out.ChannelID)
			require.NotNil(t, out.Embed)
			assert.Equal(t, tt.wantColor, out.Embed.Color)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, out.Embed.Title)
			}
		})
	}
}

func TestHandleChatMessage(t *testing.T) {
	sink := &FakeSink{}
	h := newTestHandlers(NewFakeMatchService(), sink)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	results, err := h.HandleChatMessage(context.Background(), &chatevents.MessageReceivedPayloadV1{
		MessageID: "m1", AuthorID: "2", ChannelID: "c1", Content: "~accept <@1>", Timestamp: at,
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	require.Len(t, sink.Messages, 1)
	assert.Equal(t, chat.Message{ID: "m1", AuthorID: "2", ChannelID: "c1", Content: "~accept <@1>", Timestamp: at}, sink.Messages[0])
}
