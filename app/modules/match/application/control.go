package matchservice

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
)

// Trigger hands a control token to the observer of the user's match and
// waits until the observer takes it.
func (s *MatchService) Trigger(ctx context.Context, req TriggerRequest) error {
	_, err := withTelemetry(s, ctx, "Trigger", req.UserID, func(ctx context.Context) (struct{}, error) {
		m, ok := s.registry.MatchOf(req.UserID)
		if !ok {
			return struct{}{}, ErrNoActiveMatch
		}
		if !m.Kind.Accepts(req.Token) {
			return struct{}{}, ErrTokenNotAccepted
		}

		o := s.observerFor(m.ID)
		if o == nil {
			return struct{}{}, ErrNoActiveMatch
		}

		select {
		case o.inbox <- trigger{userID: req.UserID, channelID: req.ChannelID, token: req.Token}:
			return struct{}{}, nil
		case <-o.done:
			return struct{}{}, ErrNoActiveMatch
		case <-ctx.Done():
			return struct{}{}, ctx.Err()
		}
	})
	return err
}

// Status describes the user's active match.
func (s *MatchService) Status(ctx context.Context, channelID, userID string) (chat.Announcement, error) {
	return withTelemetry(s, ctx, "Status", userID, func(ctx context.Context) (chat.Announcement, error) {
		if _, ok := s.registry.Participant(userID); !ok {
			return chat.Announcement{}, registry.ErrNotRegistered
		}
		m, ok := s.registry.MatchOf(userID)
		if !ok {
			return chat.Announcement{}, ErrNoActiveMatch
		}
		return statusAnnouncement(channelID, m, s.problems.ProblemURL, s.now()), nil
	})
}

// Resume starts an observer for every stored match. Matches whose time ran
// out while the service was down are concluded straight away.
func (s *MatchService) Resume(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "Resume", "", func(ctx context.Context) (int, error) {
		if s.ctx.Err() != nil {
			return 0, ErrShuttingDown
		}
		resumed := 0
		for _, m := range s.registry.ActiveMatches() {
			if s.spawn(m) {
				resumed++
			}
		}
		s.logger.InfoContext(ctx, "Resumed matches", slog.Int("count", resumed))
		return resumed, nil
	})
	return err
}
