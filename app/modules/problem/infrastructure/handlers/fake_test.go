package problemhandlers

import (
	"context"
	"time"

	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// ------------------------
// Fake Problem Service
// ------------------------

type FakeProblemService struct {
	trace []string

	PracticeFunc func(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error)
	ICPCFunc     func(ctx context.Context, count int) (*problemservice.ICPCSet, error)
}

func NewFakeProblemService() *FakeProblemService {
	return &FakeProblemService{trace: []string{}}
}

func (f *FakeProblemService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeProblemService) RosterCandidates(ctx context.Context, handles []string, rating int) ([]problemdomain.Problem, error) {
	f.record("RosterCandidates")
	return nil, nil
}

func (f *FakeProblemService) TargetRating(ctx context.Context, handles []string) int {
	f.record("TargetRating")
	return 0
}

func (f *FakeProblemService) AssignDuel(ctx context.Context, handles []string, ratingHint *int) (problemdomain.Problem, error) {
	f.record("AssignDuel")
	return problemdomain.Problem{}, nil
}

func (f *FakeProblemService) AssignLockout(ctx context.Context, handles []string, spec problemservice.LockoutSpec) (*problemservice.LockoutSet, error) {
	f.record("AssignLockout")
	return nil, nil
}

func (f *FakeProblemService) Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
	f.record("Submissions")
	return nil, nil
}

func (f *FakeProblemService) CompletionTime(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error) {
	f.record("CompletionTime")
	return time.Time{}, problemdomain.ErrNotCompleted
}

func (f *FakeProblemService) Rating(ctx context.Context, handle string) (int, error) {
	f.record("Rating")
	return 0, nil
}

func (f *FakeProblemService) LookupHandle(ctx context.Context, handle string) (string, error) {
	f.record("LookupHandle")
	return handle, nil
}

func (f *FakeProblemService) RandomProblem(ctx context.Context) (problemdomain.Problem, error) {
	f.record("RandomProblem")
	return problemdomain.Problem{}, nil
}

func (f *FakeProblemService) Practice(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error) {
	f.record("Practice")
	if f.PracticeFunc != nil {
		return f.PracticeFunc(ctx, handle, rating, ratingMax)
	}
	return problemdomain.Problem{}, nil
}

func (f *FakeProblemService) ICPC(ctx context.Context, count int) (*problemservice.ICPCSet, error) {
	f.record("ICPC")
	if f.ICPCFunc != nil {
		return f.ICPCFunc(ctx, count)
	}
	return &problemservice.ICPCSet{}, nil
}

func (f *FakeProblemService) ProblemURL(problem problemdomain.Problem) string {
	return problem.URL("https://codeforces.com")
}

func (f *FakeProblemService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// ------------------------
// Fake Handle Resolver
// ------------------------

type FakeHandles map[string]string

func (f FakeHandles) Handle(userID string) (string, bool) {
	h, ok := f[userID]
	return h, ok
}

// Ensure the fakes actually satisfy the interfaces
var (
	_ problemservice.Service = (*FakeProblemService)(nil)
	_ HandleResolver         = FakeHandles(nil)
)
