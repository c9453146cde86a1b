package matchservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// ------------------------
// Fake Problem Source
// ------------------------

type FakeProblemSource struct {
	mu    sync.Mutex
	trace []string

	AssignDuelFunc     func(ctx context.Context, handles []string, ratingHint *int) (problemdomain.Problem, error)
	AssignLockoutFunc  func(ctx context.Context, handles []string, spec problemservice.LockoutSpec) (*problemservice.LockoutSet, error)
	SubmissionsFunc    func(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error)
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

func (f *FakeProblemSource) AssignDuel(ctx context.Context, handles []string, ratingHint *int) (problemdomain.Problem, error) {
	f.record("AssignDuel")
	if f.AssignDuelFunc != nil {
		return f.AssignDuelFunc(ctx, handles, ratingHint)
	}
	return duelProblem, nil
}

func (f *FakeProblemSource) AssignLockout(ctx context.Context, handles []string, spec problemservice.LockoutSpec) (*problemservice.LockoutSet, error) {
	f.record("AssignLockout")
	if f.AssignLockoutFunc != nil {
		return f.AssignLockoutFunc(ctx, handles, spec)
	}
	return &problemservice.LockoutSet{
		Problems: lockoutProblems,
		Ratings:  []int{1200, 1300, 1400},
		Points:   []int{100, 200, 300},
	}, nil
}

func (f *FakeProblemSource) Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
	f.record("Submissions:" + handle)
	if f.SubmissionsFunc != nil {
		return f.SubmissionsFunc(ctx, handle, limit)
	}
	return nil, nil
}

func (f *FakeProblemSource) CompletionTime(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error) {
	f.record("CompletionTime:" + handle)
	if f.CompletionTimeFunc != nil {
		return f.CompletionTimeFunc(ctx, handle, problem)
	}
	return time.Time{}, problemdomain.ErrNotCompleted
}

func (f *FakeProblemSource) ProblemURL(problem problemdomain.Problem) string {
	return problem.URL("https://codeforces.com")
}

func (f *FakeProblemSource) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ ProblemSource = (*FakeProblemSource)(nil)

// ------------------------
// Fake Announcer
// ------------------------

type FakeAnnouncer struct {
	mu    sync.Mutex
	next  int
	posts []chat.Announcement
	edits map[chat.AnnouncementID]chat.Announcement

	PostFunc func(ctx context.Context, a chat.Announcement) (chat.AnnouncementID, error)
}

func NewFakeAnnouncer() *FakeAnnouncer {
	return &FakeAnnouncer{edits: make(map[chat.AnnouncementID]chat.Announcement)}
}

func (f *FakeAnnouncer) Post(ctx context.Context, a chat.Announcement) (chat.AnnouncementID, error) {
	if f.PostFunc != nil {
		return f.PostFunc(ctx, a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.posts = append(f.posts, a)
	return chat.AnnouncementID(fmt.Sprintf("ann-%d", f.next)), nil
}

func (f *FakeAnnouncer) Edit(_ context.Context, id chat.AnnouncementID, a chat.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[id] = a
	return nil
}

func (f *FakeAnnouncer) Posts() []chat.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Announcement(nil), f.posts...)
}

func (f *FakeAnnouncer) Edits() []chat.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]chat.Announcement, 0, len(f.edits))
	for _, a := range f.edits {
		out = append(out, a)
	}
	return out
}

// Posted reports whether any post has the title or description text.
func (f *FakeAnnouncer) Posted(text string) bool {
	for _, a := range f.Posts() {
		if a.Title == text || a.Description == text {
			return true
		}
	}
	return false
}

var _ chat.Announcer = (*FakeAnnouncer)(nil)
