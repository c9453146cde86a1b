package registry

import (
	"context"
	"log/slog"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
)

// Reservation holds participants for one negotiation between the busy check
// and match creation, so two negotiations cannot claim the same user.
type Reservation struct {
	users    []string
	released bool
}

// Users lists the reserved participants in request order.
func (res *Reservation) Users() []string {
	return append([]string(nil), res.users...)
}

// Reserve excludes every user that is unregistered, holds a match reference or
// is held by another reservation, and reserves the rest in one critical
// section. Busy users are reported with the time left in their match.
func (r *Registry) Reserve(userIDs []string) (*Reservation, []*BusyError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	res := &Reservation{}
	var busy []*BusyError
	seen := make(map[string]bool, len(userIDs))

	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		p, ok := r.participants[id]
		if !ok {
			continue
		}
		if p.MatchID != nil {
			e := &BusyError{UserID: id}
			mid := *p.MatchID
			e.MatchID = &mid
			if m, ok := r.matches[mid]; ok {
				e.Remaining = m.Remaining(now)
			}
			busy = append(busy, e)
			continue
		}
		if _, held := r.reserved[id]; held {
			busy = append(busy, &BusyError{UserID: id})
			continue
		}
		r.reserved[id] = res
		res.users = append(res.users, id)
	}
	return res, busy
}

// Release frees whatever res still holds. Releasing twice is a no-op.
func (r *Registry) Release(res *Reservation) {
	if res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(res)
}

func (r *Registry) releaseLocked(res *Reservation) {
	for _, id := range res.users {
		if r.reserved[id] == res {
			delete(r.reserved, id)
		}
	}
	res.released = true
}

// CreateMatch mints the smallest free id for draft, stamps every roster member
// and stores the match as ACTIVE. Every roster member must be held by res; the
// reservation is consumed.
func (r *Registry) CreateMatch(ctx context.Context, res *Reservation, draft matchdomain.Match) (matchdomain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res == nil || res.released {
		return matchdomain.Match{}, ErrReservationReleased
	}

	for _, mb := range draft.Roster {
		p, ok := r.participants[mb.UserID]
		if !ok {
			return matchdomain.Match{}, &InvariantError{UserID: mb.UserID, Detail: "roster member is not registered"}
		}
		if p.MatchID != nil {
			err := &InvariantError{UserID: mb.UserID, MatchID: p.MatchID, Detail: "roster member already stamped"}
			r.logger.ErrorContext(ctx, "Refusing to create match", slog.Any("error", err))
			return matchdomain.Match{}, err
		}
		if r.reserved[mb.UserID] != res {
			return matchdomain.Match{}, &InvariantError{UserID: mb.UserID, Detail: "roster member was not reserved"}
		}
	}

	m := draft.Clone()
	m.ID = r.nextIDLocked()
	m.State = matchdomain.StateActive
	r.matches[m.ID] = &m

	for _, mb := range m.Roster {
		id := m.ID
		r.participants[mb.UserID].MatchID = &id
	}
	r.releaseLocked(res)

	r.persistLocked(ctx)
	r.reportLocked()

	r.logger.InfoContext(ctx, "Match created",
		slog.Int("match_id", int(m.ID)),
		slog.String("kind", string(m.Kind)),
		slog.Any("roster", m.UserIDs()),
	)
	return m.Clone(), nil
}

func (r *Registry) nextIDLocked() matchdomain.MatchID {
	for id := matchdomain.MatchID(0); ; id++ {
		if _, used := r.matches[id]; !used {
			return id
		}
	}
}

// UpdateMatch applies fn to a copy of the match and stores it. Members fn
// drops from the roster have their references cleared in the same critical
// section; fn may not add members.
func (r *Registry) UpdateMatch(ctx context.Context, id matchdomain.MatchID, fn func(*matchdomain.Match) error) (matchdomain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.matches[id]
	if !ok {
		return matchdomain.Match{}, ErrMatchNotFound
	}

	next := current.Clone()
	if err := fn(&next); err != nil {
		return current.Clone(), err
	}
	next.ID = id

	for _, mb := range next.Roster {
		if !current.HasMember(mb.UserID) {
			return current.Clone(), &InvariantError{UserID: mb.UserID, MatchID: &id, Detail: "members cannot join a running match"}
		}
	}
	for _, mb := range current.Roster {
		if !next.HasMember(mb.UserID) {
			r.clearRefLocked(mb.UserID, id)
		}
	}

	r.matches[id] = &next
	r.persistLocked(ctx)
	return next.Clone(), nil
}

// RemoveParticipant drops userID from the match roster and clears its reference.
func (r *Registry) RemoveParticipant(ctx context.Context, id matchdomain.MatchID, userID string) (matchdomain.Match, error) {
	return r.UpdateMatch(ctx, id, func(m *matchdomain.Match) error {
		return m.RemoveMember(userID)
	})
}

// CloseMatch removes the match and clears every reference to it.
func (r *Registry) CloseMatch(ctx context.Context, id matchdomain.MatchID) (matchdomain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[id]
	if !ok {
		return matchdomain.Match{}, ErrMatchNotFound
	}
	delete(r.matches, id)

	for _, p := range r.participants {
		if p.MatchID != nil && *p.MatchID == id {
			p.MatchID = nil
		}
	}

	closed := m.Clone()
	if !closed.State.Terminal() {
		closed.State = matchdomain.StateAbandoned
	}

	r.persistLocked(ctx)
	r.reportLocked()

	r.logger.InfoContext(ctx, "Match closed",
		slog.Int("match_id", int(id)),
		slog.String("state", string(closed.State)),
	)
	return closed, nil
}

func (r *Registry) clearRefLocked(userID string, id matchdomain.MatchID) {
	p, ok := r.participants[userID]
	if ok && p.MatchID != nil && *p.MatchID == id {
		p.MatchID = nil
	}
}
