package problemservice

import (
	"context"
	"sync"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// ------------------------
// Fake Judge
// ------------------------

type FakeJudge struct {
	mu    sync.Mutex
	trace []string

	SubmissionsFunc  func(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error)
	RatingFunc       func(ctx context.Context, handle string) (int, error)
	LookupHandleFunc func(ctx context.Context, handle string) (string, error)
	ContestsFunc     func(ctx context.Context, gym bool) ([]problemdomain.Contest, error)
	StandingsFunc    func(ctx context.Context, contestID int) (problemdomain.Standings, error)
}

func NewFakeJudge() *FakeJudge {
	return &FakeJudge{trace: []string{}}
}

func (f *FakeJudge) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeJudge) Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
	f.record("Submissions")
	if f.SubmissionsFunc != nil {
		return f.SubmissionsFunc(ctx, handle, limit)
	}
	return nil, nil
}

func (f *FakeJudge) Rating(ctx context.Context, handle string) (int, error) {
	f.record("Rating")
	if f.RatingFunc != nil {
		return f.RatingFunc(ctx, handle)
	}
	return 0, nil
}

func (f *FakeJudge) LookupHandle(ctx context.Context, handle string) (string, error) {
	f.record("LookupHandle")
	if f.LookupHandleFunc != nil {
		return f.LookupHandleFunc(ctx, handle)
	}
	return handle, nil
}

func (f *FakeJudge) Contests(ctx context.Context, gym bool) ([]problemdomain.Contest, error) {
	f.record("Contests")
	if f.ContestsFunc != nil {
		return f.ContestsFunc(ctx, gym)
	}
	return nil, nil
}

func (f *FakeJudge) Standings(ctx context.Context, contestID int) (problemdomain.Standings, error) {
	f.record("Standings")
	if f.StandingsFunc != nil {
		return f.StandingsFunc(ctx, contestID)
	}
	return problemdomain.Standings{}, nil
}

func (f *FakeJudge) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// ------------------------
// Fake Catalog
// ------------------------

type FakeCatalog struct {
	calls int

	ProblemCatalogFunc func(ctx context.Context) ([]problemdomain.Problem, error)
}

func (f *FakeCatalog) ProblemCatalog(ctx context.Context) ([]problemdomain.Problem, error) {
	f.calls++
	if f.ProblemCatalogFunc != nil {
		return f.ProblemCatalogFunc(ctx)
	}
	return nil, nil
}

// Ensure the fakes actually satisfy the interfaces
var (
	_ Judge         = (*FakeJudge)(nil)
	_ CatalogSource = (*FakeCatalog)(nil)
)
