package userservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	registrationProblem = problemdomain.Problem{ContestID: 4, Index: "A", Name: "Watermelon", Rating: problemdomain.IntPtr(800)}
	challengeProblem    = problemdomain.Problem{ContestID: 1700, Index: "D", Name: "Segments", Rating: problemdomain.IntPtr(1700)}
)

type harness struct {
	svc      *UserService
	reg      *registry.Registry
	ann      *FakeAnnouncer
	problems *FakeProblemSource
	now      time.Time
}

func newHarness(t *testing.T, users ...string) *harness {
	t.Helper()

	engine := config.DefaultEngineConfig()
	engine.RegistrationWindow = 10 * time.Millisecond

	logger := slog.New(slog.DiscardHandler)
	h := &harness{
		reg:      registry.New(registry.NewMemoryStore(registry.State{}), time.Second, logger),
		ann:      &FakeAnnouncer{},
		problems: NewFakeProblemSource(),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	h.svc = NewUserService(h.reg, h.problems, h.ann, engine, logger, observability.NewNoop(), noop.NewTracerProvider().Tracer("test"))
	h.svc.now = func() time.Time { return h.now }

	for _, u := range users {
		require.NoError(t, h.reg.Register(context.Background(), matchdomain.Participant{UserID: u, Handle: "cf_" + u}))
	}
	t.Cleanup(func() {
		h.svc.Shutdown()
		h.svc.Wait()
	})
	return h
}

func submission(p problemdomain.Problem, verdict string) problemdomain.Submission {
	return problemdomain.Submission{Problem: p, Verdict: &verdict, CreationTime: time.Now()}
}

func TestRegisterHandle(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		handle     string
		setup      func(*FakeProblemSource)
		wantErr    error
		wantHandle string
		wantTrace  []string
	}{
		{
			name:   "compilation error on the prompted problem",
			userID: "9",
			handle: " Tourist ",
			setup: func(f *FakeProblemSource) {
				f.LookupHandleFunc = func(ctx context.Context, handle string) (string, error) {
					assert.Equal(t, "Tourist", handle)
					return "tourist", nil
				}
				f.SubmissionsFunc = func(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
					assert.Equal(t, 1, limit)
					return []problemdomain.Submission{submission(registrationProblem, problemdomain.VerdictCompilationError)}, nil
				}
			},
			wantHandle: "tourist",
			wantTrace:  []string{"LookupHandle", "RandomProblem", "Submissions"},
		},
		{
			name:      "empty handle",
			userID:    "9",
			handle:    "  ",
			setup:     func(f *FakeProblemSource) {},
			wantErr:   ErrInvalidHandle,
			wantTrace: []string{},
		},
		{
			name:      "already registered",
			userID:    "1",
			handle:    "someone",
			setup:     func(f *FakeProblemSource) {},
			wantErr:   registry.ErrAlreadyRegistered,
			wantTrace: []string{},
		},
		{
			name:      "handle taken ignoring case",
			userID:    "9",
			handle:    "CF_1",
			setup:     func(f *FakeProblemSource) {},
			wantErr:   registry.ErrHandleTaken,
			wantTrace: []string{},
		},
		{
			name:   "unknown handle",
			userID: "9",
			handle: "ghost",
			setup: func(f *FakeProblemSource) {
				f.LookupHandleFunc = func(ctx context.Context, handle string) (string, error) {
					return "", problemdomain.ErrHandleNotFound
				}
			},
			wantErr:   problemdomain.ErrHandleNotFound,
			wantTrace: []string{"LookupHandle"},
		},
		{
			name:   "accepted instead of compilation error",
			userID: "9",
			handle: "tourist",
			setup: func(f *FakeProblemSource) {
				f.SubmissionsFunc = func(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
					return []problemdomain.Submission{submission(registrationProblem, problemdomain.VerdictOK)}, nil
				}
			},
			wantErr:   ErrWrongVerdict,
			wantTrace: []string{"LookupHandle", "RandomProblem", "Submissions"},
		},
		{
			name:   "compilation error on another problem",
			userID: "9",
			handle: "tourist",
			setup: func(f *FakeProblemSource) {
				f.SubmissionsFunc = func(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
					return []problemdomain.Submission{submission(challengeProblem, problemdomain.VerdictCompilationError)}, nil
				}
			},
			wantErr:   ErrWrongProblem,
			wantTrace: []string{"LookupHandle", "RandomProblem", "Submissions"},
		},
		{
			name:      "no submissions",
			userID:    "9",
			handle:    "tourist",
			setup:     func(f *FakeProblemSource) {},
			wantErr:   ErrNoSubmission,
			wantTrace: []string{"LookupHandle", "RandomProblem", "Submissions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "1")
			tt.setup(h.problems)

			p, err := h.svc.RegisterHandle(context.Background(), RegisterRequest{ChannelID: "c", UserID: tt.userID, Handle: tt.handle})

			assert.Equal(t, tt.wantTrace, h.problems.Trace())
			posts := h.ann.Posts()
			require.NotEmpty(t, posts)
			last := posts[len(posts)-1]

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, chat.ColorError, last.Color)
				assert.Equal(t, FailureText(tt.wantErr), last.Description)
				if tt.userID != "1" {
					_, ok := h.reg.Participant(tt.userID)
					assert.False(t, ok)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHandle, p.Handle)
			stored, ok := h.reg.Participant(tt.userID)
			require.True(t, ok)
			assert.Equal(t, tt.wantHandle, stored.Handle)
			require.Len(t, posts, 2)
			assert.Equal(t, "4A. Watermelon", posts[0].Title)
			assert.Contains(t, posts[0].Content, "COMPILATION_ERROR")
			assert.Contains(t, last.Description, "`tourist`")
		})
	}
}

func TestRegisterHandle_CancelledWhileWaiting(t *testing.T) {
	h := newHarness(t)
	h.svc.engine.RegistrationWindow = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.svc.RegisterHandle(ctx, RegisterRequest{ChannelID: "c", UserID: "9", Handle: "tourist"})
		done <- err
	}()

	require.Eventually(t, func() bool { return len(h.ann.Posts()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("registration did not stop")
	}
	assert.NotContains(t, h.problems.Trace(), "Submissions")
}

func TestRegisterHandle_GeneratedHandles(t *testing.T) {
	faker := gofakeit.New(7)
	for range 5 {
		handle := faker.Username()
		h := newHarness(t)
		h.problems.SubmissionsFunc = func(ctx context.Context, got string, limit int) ([]problemdomain.Submission, error) {
			assert.Equal(t, handle, got)
			return []problemdomain.Submission{submission(registrationProblem, problemdomain.VerdictCompilationError)}, nil
		}

		_, err := h.svc.RegisterHandle(context.Background(), RegisterRequest{ChannelID: "c", UserID: "u", Handle: handle})
		require.NoError(t, err)

		p, ok := h.reg.ParticipantByHandle(strings.ToUpper(handle))
		require.True(t, ok)
		assert.Equal(t, "u", p.UserID)
	}
}

func TestChallenge(t *testing.T) {
	tests := []struct {
		name       string
		req        ChallengeRequest
		setup      func(t *testing.T, h *harness)
		wantErr    error
		wantActive bool
		wantTrace  []string
	}{
		{
			name: "delta above judge rating",
			req:  ChallengeRequest{UserID: "1", Delta: problemdomain.IntPtr(200)},
			setup: func(t *testing.T, h *harness) {
				h.problems.PracticeFunc = func(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error) {
					assert.Equal(t, "cf_1", handle)
					require.NotNil(t, rating)
					assert.Equal(t, 1700, *rating)
					assert.Nil(t, ratingMax)
					return challengeProblem, nil
				}
			},
			wantTrace: []string{"Rating", "Practice"},
		},
		{
			name: "delta range",
			req:  ChallengeRequest{UserID: "1", Delta: problemdomain.IntPtr(100), DeltaMax: problemdomain.IntPtr(300)},
			setup: func(t *testing.T, h *harness) {
				h.problems.PracticeFunc = func(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error) {
					assert.Equal(t, 1600, *rating)
					require.NotNil(t, ratingMax)
					assert.Equal(t, 1800, *ratingMax)
					return challengeProblem, nil
				}
			},
			wantTrace: []string{"Rating", "Practice"},
		},
		{
			name: "unrated uses default rating",
			req:  ChallengeRequest{UserID: "1"},
			setup: func(t *testing.T, h *harness) {
				h.problems.RatingFunc = func(ctx context.Context, handle string) (int, error) { return 0, nil }
				h.problems.PracticeFunc = func(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error) {
					assert.Equal(t, h.svc.engine.DefaultRating, *rating)
					return challengeProblem, nil
				}
			},
			wantTrace: []string{"Rating", "Practice"},
		},
		{
			name:      "empty range",
			req:       ChallengeRequest{UserID: "1", Delta: problemdomain.IntPtr(300), DeltaMax: problemdomain.IntPtr(100)},
			setup:     func(t *testing.T, h *harness) {},
			wantErr:   problemservice.ErrInvalidRatingRange,
			wantTrace: []string{},
		},
		{
			name:      "unregistered",
			req:       ChallengeRequest{UserID: "9"},
			setup:     func(t *testing.T, h *harness) {},
			wantErr:   registry.ErrNotRegistered,
			wantTrace: []string{},
		},
		{
			name: "already has one",
			req:  ChallengeRequest{UserID: "1"},
			setup: func(t *testing.T, h *harness) {
				_, err := h.reg.UpdateParticipant(context.Background(), "1", func(p *matchdomain.Participant) error {
					p.Challenge = &matchdomain.Challenge{Problem: registrationProblem, Rating: 800, AssignedAt: h.now}
					return nil
				})
				require.NoError(t, err)
			},
			wantActive: true,
			wantTrace:  []string{},
		},
		{
			name: "judge down",
			req:  ChallengeRequest{UserID: "1"},
			setup: func(t *testing.T, h *harness) {
				h.problems.RatingFunc = func(ctx context.Context, handle string) (int, error) {
					return 0, problemdomain.ErrJudgeUnavailable
				}
			},
			wantErr:   problemdomain.ErrJudgeUnavailable,
			wantTrace: []string{"Rating"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "1")
			tt.setup(t, h)

			c, err := h.svc.Challenge(context.Background(), tt.req)

			assert.Equal(t, tt.wantTrace, h.problems.Trace())
			switch {
			case tt.wantActive:
				var active *ActiveChallengeError
				require.True(t, errors.As(err, &active))
				assert.True(t, active.Challenge.Problem.Same(registrationProblem))
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.True(t, c.Problem.Same(challengeProblem))
				assert.Equal(t, 1700, c.Rating)
				assert.Equal(t, h.now, c.AssignedAt)
				p, _ := h.reg.Participant("1")
				require.NotNil(t, p.Challenge)
				assert.True(t, p.Challenge.Problem.Same(challengeProblem))
			}
		})
	}
}

func withChallenge(t *testing.T, h *harness, userID string, rating int, assignedAt time.Time) {
	t.Helper()
	p := challengeProblem
	p.Rating = problemdomain.IntPtr(rating)
	_, err := h.reg.UpdateParticipant(context.Background(), userID, func(pt *matchdomain.Participant) error {
		pt.Challenge = &matchdomain.Challenge{Problem: p, Rating: rating, AssignedAt: assignedAt}
		return nil
	})
	require.NoError(t, err)
}

func TestCompleteChallenge(t *testing.T) {
	tests := []struct {
		name       string
		rating     int
		noProblem  bool
		solved     bool
		wantErr    error
		wantPoints int
	}{
		{name: "lowest bracket", rating: 800, solved: true, wantPoints: 1},
		{name: "mid bracket", rating: 1700, solved: true, wantPoints: 10},
		{name: "top bracket", rating: 3500, solved: true, wantPoints: 200},
		{name: "not solved yet", rating: 1700, wantErr: problemdomain.ErrNotCompleted},
		{name: "nothing to complete", noProblem: true, wantErr: ErrNoChallenge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "1")
			if !tt.noProblem {
				withChallenge(t, h, "1", tt.rating, h.now)
			}
			if tt.solved {
				h.problems.CompletionTimeFunc = func(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error) {
					return h.now, nil
				}
			}

			got, err := h.svc.CompleteChallenge(context.Background(), "1")
			p, _ := h.reg.Participant("1")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, p.ChallengeScore)
				assert.Equal(t, !tt.noProblem, p.Challenge != nil)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, got.Points)
			assert.Equal(t, tt.wantPoints, got.Score)
			assert.Equal(t, tt.wantPoints, p.ChallengeScore)
			assert.Nil(t, p.Challenge)
		})
	}
}

func TestCompleteChallenge_Accumulates(t *testing.T) {
	h := newHarness(t, "1")
	h.problems.CompletionTimeFunc = func(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error) {
		return h.now, nil
	}

	withChallenge(t, h, "1", 1000, h.now)
	_, err := h.svc.CompleteChallenge(context.Background(), "1")
	require.NoError(t, err)

	withChallenge(t, h, "1", 2000, h.now)
	got, err := h.svc.CompleteChallenge(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 3+20, got.Score)
}

func TestSkipChallenge(t *testing.T) {
	tests := []struct {
		name          string
		elapsed       time.Duration
		force         bool
		noChallenge   bool
		wantErr       error
		wantRemaining time.Duration
	}{
		{name: "after cooldown", elapsed: 31 * time.Minute},
		{name: "forced early", elapsed: time.Minute, force: true},
		{name: "too early", elapsed: 10 * time.Minute, wantRemaining: 20 * time.Minute},
		{name: "nothing to skip", noChallenge: true, wantErr: ErrNoChallenge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "1")
			if !tt.noChallenge {
				withChallenge(t, h, "1", 1500, h.now.Add(-tt.elapsed))
			}

			skipped, err := h.svc.SkipChallenge(context.Background(), "1", tt.force)
			p, _ := h.reg.Participant("1")

			switch {
			case tt.wantRemaining > 0:
				var early *SkipTooEarlyError
				require.True(t, errors.As(err, &early))
				assert.Equal(t, tt.wantRemaining, early.Remaining)
				assert.NotNil(t, p.Challenge)
				assert.Contains(t, FailureText(err), "00h 20m 00s")
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.True(t, skipped.Problem.Same(challengeProblem))
				assert.Nil(t, p.Challenge)
			}
		})
	}
}

func TestGo_RefusedAfterShutdown(t *testing.T) {
	h := newHarness(t)
	h.svc.Shutdown()
	err := h.svc.Go(context.Background(), func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrShuttingDown)
}
