package matchservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
)

// trigger is one control token addressed to a match.
type trigger struct {
	userID    string
	channelID string
	token     chat.TokenKind
}

// observer owns one ACTIVE match until it reaches a terminal state.
type observer struct {
	id    matchdomain.MatchID
	inbox chan trigger
	done  chan struct{}
}

// spawn starts the observer for m unless one is already running or the
// service is shutting down.
func (s *MatchService) spawn(m matchdomain.Match) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return false
	}
	if _, running := s.observers[m.ID]; running {
		return false
	}

	o := &observer{
		id:    m.ID,
		inbox: make(chan trigger),
		done:  make(chan struct{}),
	}
	s.observers[m.ID] = o

	roster := make(map[string]bool, len(m.Roster))
	for _, id := range m.UserIDs() {
		roster[id] = true
	}
	kind := m.Kind
	sub := s.hub.Subscribe(func(msg chat.Message) bool {
		if !roster[msg.AuthorID] {
			return false
		}
		tok, ok := chat.ParseToken(s.engine.CommandPrefix, msg.Content)
		return ok && kind.Accepts(tok.Kind)
	})

	s.wg.Add(1)
	go s.observe(o, m, sub)
	return true
}

func (s *MatchService) retire(o *observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observers[o.id] == o {
		delete(s.observers, o.id)
	}
	close(o.done)
}

func (s *MatchService) observerFor(id matchdomain.MatchID) *observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observers[id]
}

// observe races the match deadline against control tokens from the roster,
// whether typed in chat or routed through Trigger. The deadline comes from
// the match's creation time, so a resumed match keeps its original budget.
func (s *MatchService) observe(o *observer, m matchdomain.Match, sub *chat.Subscription) {
	defer s.wg.Done()
	defer s.retire(o)
	defer sub.Unsubscribe()

	deadline, cancel := context.WithDeadline(s.ctx, m.Deadline())
	defer cancel()

	logger := s.logger.With(
		slog.Int("match_id", int(m.ID)),
		slog.String("kind", string(m.Kind)),
	)
	logger.Info("Observing match", slog.Duration("remaining", m.Remaining(s.now())))

	for {
		var t trigger
		select {
		case <-deadline.Done():
			if s.ctx.Err() != nil {
				logger.Info("Observer stopped for shutdown")
				return
			}
			s.expire(s.ctx, o.id)
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			tok, _ := chat.ParseToken(s.engine.CommandPrefix, msg.Content)
			t = trigger{userID: msg.AuthorID, channelID: msg.ChannelID, token: tok.Kind}
		case t = <-o.inbox:
		}

		done, err := withTelemetry(s, s.ctx, "HandleTrigger", t.userID, func(ctx context.Context) (bool, error) {
			return s.apply(ctx, o.id, t), nil
		})
		if err != nil || done {
			return
		}
	}
}

// apply handles one token and reports whether the match reached a terminal state.
func (s *MatchService) apply(ctx context.Context, id matchdomain.MatchID, t trigger) bool {
	m, ok := s.registry.Match(id)
	if !ok {
		return true
	}
	if !m.HasMember(t.userID) || !m.Kind.Accepts(t.token) {
		return false
	}
	if t.channelID == "" {
		t.channelID = m.ChannelID
	}

	switch m.Kind {
	case matchdomain.KindDuel:
		if t.token == chat.TokenGiveUp {
			return s.duelGiveUp(ctx, m, t)
		}
		return s.duelFinish(ctx, m, t)
	case matchdomain.KindLockout:
		if t.token == chat.TokenGiveUp {
			return s.lockoutGiveUp(ctx, m, t)
		}
		return s.lockoutUpdate(ctx, m, t.channelID)
	}
	return false
}

// expire runs the time-out transition of match id.
func (s *MatchService) expire(ctx context.Context, id matchdomain.MatchID) {
	m, ok := s.registry.Match(id)
	if !ok {
		return
	}
	s.logger.InfoContext(ctx, "Match time is up", slog.Int("match_id", int(id)))

	switch m.Kind {
	case matchdomain.KindDuel:
		s.duelExpire(ctx, m)
	case matchdomain.KindLockout:
		s.lockoutExpire(ctx, m)
	}
}

// conclude applies the terminal transition fn, closes the match in the
// registry, and announces and publishes the outcome.
func (s *MatchService) conclude(ctx context.Context, m matchdomain.Match, fn func(*matchdomain.Match)) bool {
	final := m.Clone()
	fn(&final)

	if _, err := s.registry.CloseMatch(ctx, m.ID); err != nil {
		if !errors.Is(err, registry.ErrMatchNotFound) {
			s.logger.ErrorContext(ctx, "Failed to close match",
				slog.Int("match_id", int(m.ID)),
				slog.Any("error", err),
			)
		}
		return true
	}

	s.announce(ctx, outcomeAnnouncement(final, s.problems.ProblemURL))
	s.publishFinished(ctx, final)
	s.metrics.RecordMatchFinished(ctx, string(final.Kind), string(final.State))

	s.logger.InfoContext(ctx, "Match finished",
		slog.Int("match_id", int(final.ID)),
		slog.String("kind", string(final.Kind)),
		slog.String("state", string(final.State)),
		slog.String("winner_id", final.WinnerID),
	)
	return true
}
