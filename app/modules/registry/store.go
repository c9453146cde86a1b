package registry

import (
	"context"
	"sync"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
)

// State is a serializable snapshot of the registry.
type State struct {
	Participants []matchdomain.Participant `json:"participants"`
	Matches      []matchdomain.Match       `json:"matches"`
}

// Store durably mirrors the registry.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// MemoryStore keeps the last saved snapshot in memory.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	saves int
}

// NewMemoryStore returns a store seeded with initial.
func NewMemoryStore(initial State) *MemoryStore {
	return &MemoryStore{state: cloneState(initial)}
}

func (s *MemoryStore) Load(_ context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state), nil
}

func (s *MemoryStore) Save(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
	s.saves++
	return nil
}

// Saved returns the last saved snapshot and the number of saves.
func (s *MemoryStore) Saved() (State, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state), s.saves
}

func cloneState(st State) State {
	out := State{
		Participants: make([]matchdomain.Participant, len(st.Participants)),
		Matches:      make([]matchdomain.Match, len(st.Matches)),
	}
	for i, p := range st.Participants {
		out.Participants[i] = p.Clone()
	}
	for i, m := range st.Matches {
		out.Matches[i] = m.Clone()
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
