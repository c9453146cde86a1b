package registry

import (
	"context"
	"sync"
)

// ------------------------
// Fake Store
// ------------------------

type FakeStore struct {
	mu    sync.Mutex
	trace []string

	LoadFunc func(ctx context.Context) (State, error)
	SaveFunc func(ctx context.Context, state State) error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{trace: []string{}}
}

func (f *FakeStore) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeStore) Load(ctx context.Context) (State, error) {
	f.record("Load")
	if f.LoadFunc != nil {
		return f.LoadFunc(ctx)
	}
	return State{}, nil
}

func (f *FakeStore) Save(ctx context.Context, state State) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, state)
	}
	return nil
}

func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Store = (*FakeStore)(nil)
