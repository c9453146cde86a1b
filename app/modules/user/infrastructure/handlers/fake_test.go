package userhandlers

import (
	"context"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	userservice "github.com/Black-And-White-Club/lockout-bot/app/modules/user/application"
)

// ------------------------
// Fake User Service
// ------------------------

type FakeUserService struct {
	trace []string

	RegisterHandleFunc    func(ctx context.Context, req userservice.RegisterRequest) (matchdomain.Participant, error)
	ChallengeFunc         func(ctx context.Context, req userservice.ChallengeRequest) (matchdomain.Challenge, error)
	CompleteChallengeFunc func(ctx context.Context, userID string) (*userservice.Completion, error)
	SkipChallengeFunc     func(ctx context.Context, userID string, force bool) (matchdomain.Challenge, error)
	GoFunc                func(ctx context.Context, fn func(ctx context.Context)) error
}

func NewFakeUserService() *FakeUserService {
	return &FakeUserService{trace: []string{}}
}

func (f *FakeUserService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeUserService) Trace() []string {
	return f.trace
}

func (f *FakeUserService) RegisterHandle(ctx context.Context, req userservice.RegisterRequest) (matchdomain.Participant, error) {
	f.record("RegisterHandle")
	if f.RegisterHandleFunc != nil {
		return f.RegisterHandleFunc(ctx, req)
	}
	return matchdomain.Participant{UserID: req.UserID, Handle: req.Handle}, nil
}

func (f *FakeUserService) Challenge(ctx context.Context, req userservice.ChallengeRequest) (matchdomain.Challenge, error) {
	f.record("Challenge")
	if f.ChallengeFunc != nil {
		return f.ChallengeFunc(ctx, req)
	}
	return matchdomain.Challenge{}, nil
}

func (f *FakeUserService) CompleteChallenge(ctx context.Context, userID string) (*userservice.Completion, error) {
	f.record("CompleteChallenge")
	if f.CompleteChallengeFunc != nil {
		return f.CompleteChallengeFunc(ctx, userID)
	}
	return &userservice.Completion{}, nil
}

func (f *FakeUserService) SkipChallenge(ctx context.Context, userID string, force bool) (matchdomain.Challenge, error) {
	f.record("SkipChallenge")
	if f.SkipChallengeFunc != nil {
		return f.SkipChallengeFunc(ctx, userID, force)
	}
	return matchdomain.Challenge{}, nil
}

func (f *FakeUserService) ProblemURL(problem problemdomain.Problem) string {
	return problem.URL("https://codeforces.com")
}

// Go runs fn inline so tests observe its effects synchronously.
func (f *FakeUserService) Go(ctx context.Context, fn func(ctx context.Context)) error {
	f.record("Go")
	if f.GoFunc != nil {
		return f.GoFunc(ctx, fn)
	}
	fn(ctx)
	return nil
}

func (f *FakeUserService) Shutdown() {}

func (f *FakeUserService) Wait() {}

var _ userservice.Service = (*FakeUserService)(nil)
