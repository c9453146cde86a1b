package matchservice

import (
	"context"
	"fmt"
	"log/slog"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
)

// StartDuel negotiates a duel roster, assigns one shared problem and starts
// the match. Failures are announced to the initiator before they are returned.
func (s *MatchService) StartDuel(ctx context.Context, req DuelRequest) (*Result, error) {
	return withTelemetry(s, ctx, "StartDuel", req.InitiatorID, func(ctx context.Context) (*Result, error) {
		neg, err := s.negotiate(ctx, matchdomain.KindDuel, req.ChannelID, req.InitiatorID, req.InviteeIDs)
		if err != nil {
			return nil, s.fail(ctx, req.ChannelID, req.InitiatorID, err)
		}

		problem, err := s.problems.AssignDuel(ctx, neg.handles(), req.RatingHint)
		if err != nil {
			s.registry.Release(neg.reservation)
			return nil, s.fail(ctx, req.ChannelID, req.InitiatorID, fmt.Errorf("assign duel problem: %w", err))
		}

		draft := matchdomain.NewDuel(req.ChannelID, neg.roster, problem, s.now(), s.engine.DuelDuration)
		return s.launch(ctx, req.InitiatorID, neg, draft)
	})
}

// StartLockout negotiates a lockout roster, assigns a problem ladder and
// starts the match.
func (s *MatchService) StartLockout(ctx context.Context, req LockoutRequest) (*Result, error) {
	return withTelemetry(s, ctx, "StartLockout", req.InitiatorID, func(ctx context.Context) (*Result, error) {
		duration := req.Duration
		if duration == 0 {
			duration = s.engine.LockoutDuration
		}
		if duration < 0 || duration > s.engine.MaxLockoutDuration {
			return nil, s.fail(ctx, req.ChannelID, req.InitiatorID, ErrInvalidDuration)
		}
		if req.ProblemCount < 0 || req.ProblemCount > s.engine.MaxProblemCount {
			return nil, s.fail(ctx, req.ChannelID, req.InitiatorID, problemservice.ErrInvalidProblemCount)
		}

		neg, err := s.negotiate(ctx, matchdomain.KindLockout, req.ChannelID, req.InitiatorID, req.InviteeIDs)
		if err != nil {
			return nil, s.fail(ctx, req.ChannelID, req.InitiatorID, err)
		}

		set, err := s.problems.AssignLockout(ctx, neg.handles(), problemservice.LockoutSpec{
			Count:      req.ProblemCount,
			RatingHint: req.RatingHint,
			Increment:  req.Increment,
		})
		if err != nil {
			s.registry.Release(neg.reservation)
			return nil, s.fail(ctx, req.ChannelID, req.InitiatorID, fmt.Errorf("assign lockout problems: %w", err))
		}

		draft := matchdomain.NewLockout(req.ChannelID, neg.roster, set.Problems, set.Points, s.now(), duration)
		return s.launch(ctx, req.InitiatorID, neg, draft)
	})
}

// launch stores the drafted match, announces it and hands it to an observer.
func (s *MatchService) launch(ctx context.Context, initiatorID string, neg *negotiation, draft matchdomain.Match) (*Result, error) {
	m, err := s.registry.CreateMatch(ctx, neg.reservation, draft)
	if err != nil {
		s.registry.Release(neg.reservation)
		return nil, s.fail(ctx, draft.ChannelID, initiatorID, fmt.Errorf("create match: %w", err))
	}

	if id := s.announce(ctx, startAnnouncement(m, s.problems.ProblemURL, s.engine.CommandPrefix)); id != "" {
		updated, err := s.registry.UpdateMatch(ctx, m.ID, func(next *matchdomain.Match) error {
			next.AnnouncementID = string(id)
			return nil
		})
		if err == nil {
			m = updated
		}
	}

	s.metrics.RecordMatchStarted(ctx, string(m.Kind))
	s.publishStarted(ctx, m)

	if !s.spawn(m) {
		s.logger.WarnContext(ctx, "Match stored without observer, it resumes on restart",
			slog.Int("match_id", int(m.ID)),
		)
	}
	return &Result{Match: m, Excluded: neg.excluded}, nil
}

// fail announces err to userID and returns it.
func (s *MatchService) fail(ctx context.Context, channelID, userID string, err error) error {
	s.announce(ctx, failureAnnouncement(channelID, userID, err))
	return err
}
