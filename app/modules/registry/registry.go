// Package registry holds the active matches and the participants that play
// them. It mints match ids and keeps every participant's match reference in
// step with the match rosters.
package registry

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
)

// ActiveGauge tracks the number of active matches.
type ActiveGauge interface {
	SetActiveMatches(n int)
}

// Registry is the process-wide table of participants and active matches.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]*matchdomain.Participant
	matches      map[matchdomain.MatchID]*matchdomain.Match
	reserved     map[string]*Reservation

	store          Store
	persistTimeout time.Duration
	dirty          bool

	now    func() time.Time
	gauge  ActiveGauge
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithGauge reports the active match count after every change.
func WithGauge(g ActiveGauge) Option {
	return func(r *Registry) { r.gauge = g }
}

// New returns an empty registry mirrored to store.
func New(store Store, persistTimeout time.Duration, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if persistTimeout <= 0 {
		persistTimeout = 5 * time.Second
	}
	r := &Registry{
		participants:   make(map[string]*matchdomain.Participant),
		matches:        make(map[matchdomain.MatchID]*matchdomain.Match),
		reserved:       make(map[string]*Reservation),
		store:          store,
		persistTimeout: persistTimeout,
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory tables with the stored snapshot, repairing any
// participant reference that disagrees with the match rosters.
func (r *Registry) Load(ctx context.Context) error {
	state, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = make(map[string]*matchdomain.Participant, len(state.Participants))
	for _, p := range state.Participants {
		p := p.Clone()
		r.participants[p.UserID] = &p
	}
	r.matches = make(map[matchdomain.MatchID]*matchdomain.Match, len(state.Matches))
	for _, m := range state.Matches {
		m := m.Clone()
		r.matches[m.ID] = &m
	}
	r.reserved = make(map[string]*Reservation)

	if repaired := r.repairLocked(ctx); repaired > 0 {
		r.persistLocked(ctx)
	}
	r.reportLocked()

	r.logger.InfoContext(ctx, "Registry loaded",
		slog.Int("participants", len(r.participants)),
		slog.Int("matches", len(r.matches)),
	)
	return nil
}

// repairLocked makes participant references agree with rosters and returns
// the number of fixes.
func (r *Registry) repairLocked(ctx context.Context) int {
	fixes := 0
	report := func(e *InvariantError) {
		fixes++
		r.logger.ErrorContext(ctx, "Repairing registry", slog.Any("error", e))
	}

	for _, id := range slices.Sorted(maps.Keys(r.matches)) {
		m := r.matches[id]
		kept := m.Roster[:0]
		var scores []int
		for i, mb := range m.Roster {
			p, ok := r.participants[mb.UserID]
			switch {
			case !ok:
				report(&InvariantError{UserID: mb.UserID, MatchID: &id, Detail: "roster member is not registered"})
				continue
			case p.MatchID == nil:
				report(&InvariantError{UserID: mb.UserID, MatchID: &id, Detail: "roster member had no match reference"})
				p.MatchID = &id
			case *p.MatchID != id:
				if other, ok := r.matches[*p.MatchID]; ok && other.HasMember(mb.UserID) {
					report(&InvariantError{UserID: mb.UserID, MatchID: &id, Detail: "member of two matches"})
					continue
				}
				report(&InvariantError{UserID: mb.UserID, MatchID: &id, Detail: "reference pointed at another match"})
				p.MatchID = &id
			}
			kept = append(kept, mb)
			if i < len(m.Scores) {
				scores = append(scores, m.Scores[i])
			}
		}
		m.Roster = kept
		if m.Kind == matchdomain.KindLockout {
			m.Scores = scores
		}
	}

	for _, p := range r.participants {
		if p.MatchID == nil {
			continue
		}
		m, ok := r.matches[*p.MatchID]
		if !ok || !m.HasMember(p.UserID) {
			report(&InvariantError{UserID: p.UserID, MatchID: p.MatchID, Detail: "dangling match reference"})
			p.MatchID = nil
		}
	}
	return fixes
}

// Participant returns a copy of the participant record.
func (r *Registry) Participant(userID string) (matchdomain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[userID]
	if !ok {
		return matchdomain.Participant{}, false
	}
	return p.Clone(), true
}

// Handle returns the judge handle registered by userID.
func (r *Registry) Handle(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[userID]
	if !ok {
		return "", false
	}
	return p.Handle, true
}

// ParticipantByHandle finds a participant by handle, ignoring case.
func (r *Registry) ParticipantByHandle(handle string) (matchdomain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.byHandleLocked(handle)
	if p == nil {
		return matchdomain.Participant{}, false
	}
	return p.Clone(), true
}

func (r *Registry) byHandleLocked(handle string) *matchdomain.Participant {
	for _, p := range r.participants {
		if strings.EqualFold(p.Handle, handle) {
			return p
		}
	}
	return nil
}

// Match returns a copy of an active match.
func (r *Registry) Match(id matchdomain.MatchID) (matchdomain.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[id]
	if !ok {
		return matchdomain.Match{}, false
	}
	return m.Clone(), true
}

// MatchOf returns a copy of the match userID currently plays.
func (r *Registry) MatchOf(userID string) (matchdomain.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[userID]
	if !ok || p.MatchID == nil {
		return matchdomain.Match{}, false
	}
	m, ok := r.matches[*p.MatchID]
	if !ok {
		return matchdomain.Match{}, false
	}
	return m.Clone(), true
}

// ActiveMatches returns copies of every active match ordered by id.
func (r *Registry) ActiveMatches() []matchdomain.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]matchdomain.Match, 0, len(r.matches))
	for _, id := range slices.Sorted(maps.Keys(r.matches)) {
		out = append(out, r.matches[id].Clone())
	}
	return out
}

// Register adds a participant. Handles are unique ignoring case.
func (r *Registry) Register(ctx context.Context, p matchdomain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[p.UserID]; ok {
		return ErrAlreadyRegistered
	}
	if r.byHandleLocked(p.Handle) != nil {
		return ErrHandleTaken
	}

	p = p.Clone()
	p.MatchID = nil
	r.participants[p.UserID] = &p
	r.persistLocked(ctx)
	return nil
}

// UpdateParticipant applies fn to a participant and persists the result. The
// user id and match reference are owned by the registry and cannot change.
func (r *Registry) UpdateParticipant(ctx context.Context, userID string, fn func(*matchdomain.Participant) error) (matchdomain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.participants[userID]
	if !ok {
		return matchdomain.Participant{}, ErrNotRegistered
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return current.Clone(), err
	}
	next.UserID = current.UserID
	next.MatchID = current.Clone().MatchID

	r.participants[userID] = &next
	r.persistLocked(ctx)
	return next.Clone(), nil
}

// Flush retries a persistence that failed earlier.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty {
		return nil
	}
	return r.persistLocked(ctx)
}

// Dirty reports whether the last persistence attempt failed.
func (r *Registry) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

// Snapshot returns the current state as it would be persisted.
func (r *Registry) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() State {
	st := State{
		Participants: make([]matchdomain.Participant, 0, len(r.participants)),
		Matches:      make([]matchdomain.Match, 0, len(r.matches)),
	}
	for _, p := range r.participants {
		st.Participants = append(st.Participants, p.Clone())
	}
	slices.SortFunc(st.Participants, func(a, b matchdomain.Participant) int { return cmp.Compare(a.UserID, b.UserID) })
	for _, id := range slices.Sorted(maps.Keys(r.matches)) {
		st.Matches = append(st.Matches, r.matches[id].Clone())
	}
	return st
}

// persistLocked saves the snapshot synchronously. A failure is logged and
// left dirty for the next mutation or Flush.
func (r *Registry) persistLocked(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.persistTimeout)
	defer cancel()

	if err := r.store.Save(saveCtx, r.snapshotLocked()); err != nil {
		r.dirty = true
		r.logger.ErrorContext(ctx, "Failed to persist registry", slog.Any("error", err))
		return fmt.Errorf("persist registry: %w", err)
	}
	if r.dirty {
		r.logger.InfoContext(ctx, "Registry persistence recovered")
	}
	r.dirty = false
	return nil
}

func (r *Registry) reportLocked() {
	if r.gauge != nil {
		r.gauge.SetActiveMatches(len(r.matches))
	}
}
