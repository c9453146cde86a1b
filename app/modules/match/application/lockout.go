package matchservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"golang.org/x/sync/errgroup"
)

// lockoutUpdate claims newly solved problems, refreshes the standings and
// ends the lockout once it is decided.
func (s *MatchService) lockoutUpdate(ctx context.Context, m matchdomain.Match, channelID string) bool {
	pending := s.announce(ctx, chat.Announcement{
		ChannelID:   channelID,
		Description: "Updating standings...",
		Color:       chat.ColorActive,
	})

	updated, err := s.claim(ctx, m, pending)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to record lockout claims",
			slog.Int("match_id", int(m.ID)),
			slog.Any("error", err),
		)
		s.edit(ctx, pending, chat.ErrorAnnouncement(channelID, "", "Could not update the standings, try again."))
		return false
	}

	s.edit(ctx, pending, standingsAnnouncement(channelID, updated, s.problems.ProblemURL, s.now()))

	if updated.Decided(s.now()) {
		return s.conclude(ctx, updated, (*matchdomain.Match).Conclude)
	}
	return false
}

// lockoutGiveUp drops the participant, then runs an update for the rest.
func (s *MatchService) lockoutGiveUp(ctx context.Context, m matchdomain.Match, t trigger) bool {
	updated, err := s.registry.RemoveParticipant(ctx, m.ID, t.userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove participant",
			slog.Int("match_id", int(m.ID)),
			slog.String("user_id", t.userID),
			slog.Any("error", err),
		)
		return false
	}

	s.announce(ctx, chat.Announcement{
		ChannelID:   t.channelID,
		Content:     chat.Mention(t.userID),
		Mentions:    []string{t.userID},
		Description: "You left the lockout.",
		Color:       chat.ColorFinished,
	})
	return s.lockoutUpdate(ctx, updated, t.channelID)
}

// lockoutExpire records the last claims and concludes the lockout.
func (s *MatchService) lockoutExpire(ctx context.Context, m matchdomain.Match) {
	updated, err := s.claim(ctx, m, "")
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to record final lockout claims",
			slog.Int("match_id", int(m.ID)),
			slog.Any("error", err),
		)
		updated = m
	}
	s.conclude(ctx, updated, (*matchdomain.Match).Conclude)
}

// claim fetches every participant's submissions and awards each unclaimed
// problem to its earliest accepted solver within the time budget. A failed
// fetch counts as no submissions. announcementID, when set, becomes the
// standings message later edits target.
func (s *MatchService) claim(ctx context.Context, m matchdomain.Match, announcementID chat.AnnouncementID) (matchdomain.Match, error) {
	fetched := make([][]problemdomain.Submission, len(m.Roster))

	var g errgroup.Group
	for i, mb := range m.Roster {
		g.Go(func() error {
			subs, err := s.problems.Submissions(ctx, mb.Handle, s.engine.SubmissionLimit)
			if err != nil {
				s.logger.WarnContext(ctx, "Submissions unavailable, counting none",
					slog.Int("match_id", int(m.ID)),
					slog.String("handle", mb.Handle),
					slog.Any("error", err),
				)
				return nil
			}
			fetched[i] = subs
			return nil
		})
	}
	_ = g.Wait()

	byUser := make(map[string][]problemdomain.Submission, len(m.Roster))
	for i, mb := range m.Roster {
		byUser[mb.UserID] = fetched[i]
	}

	return s.registry.UpdateMatch(ctx, m.ID, func(next *matchdomain.Match) error {
		deadline := next.Deadline()
		for pi, problem := range next.Problems {
			if !next.Locked(pi) {
				continue
			}

			winner := -1
			var best time.Time
			for mi, mb := range next.Roster {
				at, err := problemdomain.CompletionTime(byUser[mb.UserID], problem)
				if err != nil || at.After(deadline) {
					continue
				}
				if winner < 0 || at.Before(best) {
					winner, best = mi, at
				}
			}
			if winner >= 0 {
				if err := next.Claim(pi, winner); err != nil {
					return err
				}
			}
		}
		if announcementID != "" {
			next.AnnouncementID = string(announcementID)
		}
		return nil
	})
}
