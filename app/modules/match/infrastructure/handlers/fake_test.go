package matchhandlers

import (
	"context"
	"sync"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchservice "github.com/Black-And-White-Club/lockout-bot/app/modules/match/application"
)

// ------------------------
// Fake Match Service
// ------------------------

type FakeMatchService struct {
	mu    sync.Mutex
	trace []string

	StartDuelFunc    func(ctx context.Context, req matchservice.DuelRequest) (*matchservice.Result, error)
	StartLockoutFunc func(ctx context.Context, req matchservice.LockoutRequest) (*matchservice.Result, error)
	TriggerFunc      func(ctx context.Context, req matchservice.TriggerRequest) error
	StatusFunc       func(ctx context.Context, channelID, userID string) (chat.Announcement, error)
	GoFunc           func(ctx context.Context, fn func(ctx context.Context)) error
}

func NewFakeMatchService() *FakeMatchService {
	return &FakeMatchService{trace: []string{}}
}

func (f *FakeMatchService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeMatchService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeMatchService) StartDuel(ctx context.Context, req matchservice.DuelRequest) (*matchservice.Result, error) {
	f.record("StartDuel")
	if f.StartDuelFunc != nil {
		return f.StartDuelFunc(ctx, req)
	}
	return &matchservice.Result{}, nil
}

func (f *FakeMatchService) StartLockout(ctx context.Context, req matchservice.LockoutRequest) (*matchservice.Result, error) {
	f.record("StartLockout")
	if f.StartLockoutFunc != nil {
		return f.StartLockoutFunc(ctx, req)
	}
	return &matchservice.Result{}, nil
}

func (f *FakeMatchService) Trigger(ctx context.Context, req matchservice.TriggerRequest) error {
	f.record("Trigger")
	if f.TriggerFunc != nil {
		return f.TriggerFunc(ctx, req)
	}
	return nil
}

func (f *FakeMatchService) Status(ctx context.Context, channelID, userID string) (chat.Announcement, error) {
	f.record("Status")
	if f.StatusFunc != nil {
		return f.StatusFunc(ctx, channelID, userID)
	}
	return chat.Announcement{ChannelID: channelID}, nil
}

func (f *FakeMatchService) Resume(ctx context.Context) error {
	f.record("Resume")
	return nil
}

// Go runs fn inline so tests observe its effects synchronously.
func (f *FakeMatchService) Go(ctx context.Context, fn func(ctx context.Context)) error {
	f.record("Go")
	if f.GoFunc != nil {
		return f.GoFunc(ctx, fn)
	}
	fn(ctx)
	return nil
}

func (f *FakeMatchService) Shutdown() { f.record("Shutdown") }

func (f *FakeMatchService) Wait() {}

var _ matchservice.Service = (*FakeMatchService)(nil)

// ------------------------
// Fake Message Sink
// ------------------------

type FakeSink struct {
	Messages []chat.Message
}

func (f *FakeSink) Publish(msg chat.Message) {
	f.Messages = append(f.Messages, msg)
}

var _ MessageSink = (*FakeSink)(nil)
