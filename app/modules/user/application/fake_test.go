package userservice

import (
	"context"
	"sync"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// ------------------------
// Fake Problem Source
// ------------------------

type FakeProblemSource struct {
	mu    sync.Mutex
	trace []string

	LookupHandleFunc   func(ctx context.Context, handle string) (string, error)
	RandomProblemFunc  func(ctx context.Context) (problemdomain.Problem, error)
	SubmissionsFunc    func(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error)
	RatingFunc         func(ctx context.Context, handle string) (int, error)
	PracticeFunc       func(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error)
	CompletionTimeFunc func(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error)
}

func NewFakeProblemSource() *FakeProblemSource {
	return &FakeProblemSource{trace: []string{}}
}

func (f *FakeProblemSource) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeProblemSource) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeProblemSource) LookupHandle(ctx context.Context, handle string) (string, error) {
	f.record("LookupHandle")
	if f.LookupHandleFunc != nil {
		return f.LookupHandleFunc(ctx, handle)
	}
	return handle, nil
}

func (f *FakeProblemSource) RandomProblem(ctx context.Context) (problemdomain.Problem, error) {
	f.record("RandomProblem")
	if f.RandomProblemFunc != nil {
		return f.RandomProblemFunc(ctx)
	}
	return registrationProblem, nil
}

func (f *FakeProblemSource) Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
	f.record("Submissions")
	if f.SubmissionsFunc != nil {
		return f.SubmissionsFunc(ctx, handle, limit)
	}
	return nil, nil
}

func (f *FakeProblemSource) Rating(ctx context.Context, handle string) (int, error) {
	f.record("Rating")
	if f.RatingFunc != nil {
		return f.RatingFunc(ctx, handle)
	}
	return 1500, nil
}

func (f *FakeProblemSource) Practice(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error) {
	f.record("Practice")
	if f.PracticeFunc != nil {
		return f.PracticeFunc(ctx, handle, rating, ratingMax)
	}
	return challengeProblem, nil
}

func (f *FakeProblemSource) CompletionTime(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error) {
	f.record("CompletionTime")
	if f.CompletionTimeFunc != nil {
		return f.CompletionTimeFunc(ctx, handle, problem)
	}
	return time.Time{}, problemdomain.ErrNotCompleted
}

func (f *FakeProblemSource) ProblemURL(problem problemdomain.Problem) string {
	return problem.URL("https://codeforces.com")
}

var _ ProblemSource = (*FakeProblemSource)(nil)

// ------------------------
// Fake Announcer
// ------------------------

type FakeAnnouncer struct {
	mu    sync.Mutex
	posts []chat.Announcement
}

func (f *FakeAnnouncer) Post(_ context.Context, a chat.Announcement) (chat.AnnouncementID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, a)
	return chat.AnnouncementID("ann"), nil
}

func (f *FakeAnnouncer) Edit(context.Context, chat.AnnouncementID, chat.Announcement) error {
	return nil
}

func (f *FakeAnnouncer) Posts() []chat.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Announcement(nil), f.posts...)
}

var _ chat.Announcer = (*FakeAnnouncer)(nil)
