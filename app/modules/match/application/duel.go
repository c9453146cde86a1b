package matchservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// duelFinish checks the claimant's submissions. A verified solve hands the
// duel to the claimant.
func (s *MatchService) duelFinish(ctx context.Context, m matchdomain.Match, t trigger) bool {
	member := m.Roster[m.MemberIndex(t.userID)]

	_, err := s.problems.CompletionTime(ctx, member.Handle, m.Problems[0])
	switch {
	case errors.Is(err, problemdomain.ErrNotCompleted):
		s.announce(ctx, chat.ErrorAnnouncement(t.channelID, t.userID, "You haven't completed the problem yet."))
		return false
	case err != nil:
		s.logger.WarnContext(ctx, "Completion check failed",
			slog.Int("match_id", int(m.ID)),
			slog.String("handle", member.Handle),
			slog.Any("error", err),
		)
		s.announce(ctx, chat.ErrorAnnouncement(t.channelID, t.userID, "Codeforces is not responding, try again in a moment."))
		return false
	}

	return s.conclude(ctx, m, func(final *matchdomain.Match) {
		final.Win(t.userID)
	})
}

// duelGiveUp hands the duel to the other participant.
func (s *MatchService) duelGiveUp(ctx context.Context, m matchdomain.Match, t trigger) bool {
	opponent, ok := m.Opponent(t.userID)
	return s.conclude(ctx, m, func(final *matchdomain.Match) {
		if !ok {
			final.State = matchdomain.StateAbandoned
			return
		}
		final.Win(opponent.UserID)
	})
}

// duelExpire checks the roster in order; the first verified solver wins and
// nobody solving is a draw.
func (s *MatchService) duelExpire(ctx context.Context, m matchdomain.Match) {
	winner := s.firstSolver(ctx, m)
	s.conclude(ctx, m, func(final *matchdomain.Match) {
		if winner == "" {
			final.State = matchdomain.StateDrawn
			return
		}
		final.Win(winner)
	})
}

// firstSolver returns the first roster member with an accepted submission.
// Judge failures count as not solved.
func (s *MatchService) firstSolver(ctx context.Context, m matchdomain.Match) string {
	for _, mb := range m.Roster {
		_, err := s.problems.CompletionTime(ctx, mb.Handle, m.Problems[0])
		if err == nil {
			return mb.UserID
		}
		if !errors.Is(err, problemdomain.ErrNotCompleted) {
			s.logger.WarnContext(ctx, "Treating unverifiable participant as unsolved",
				slog.Int("match_id", int(m.ID)),
				slog.String("handle", mb.Handle),
				slog.Any("error", err),
			)
		}
	}
	return ""
}
