package userservice

import (
	"context"
	"fmt"
	"log/slog"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
)

// Challenge picks an unsolved problem near the participant's judge rating and
// records it as the outstanding challenge.
func (s *UserService) Challenge(ctx context.Context, req ChallengeRequest) (matchdomain.Challenge, error) {
	return withTelemetry(s, ctx, "Challenge", req.UserID, func(ctx context.Context) (matchdomain.Challenge, error) {
		p, ok := s.registry.Participant(req.UserID)
		if !ok {
			return matchdomain.Challenge{}, registry.ErrNotRegistered
		}
		if p.Challenge != nil {
			return matchdomain.Challenge{}, &ActiveChallengeError{Challenge: *p.Challenge}
		}

		delta := 0
		if req.Delta != nil {
			delta = *req.Delta
		}
		if req.DeltaMax != nil && *req.DeltaMax < delta {
			return matchdomain.Challenge{}, fmt.Errorf("%w: %d > %d", problemservice.ErrInvalidRatingRange, delta, *req.DeltaMax)
		}

		base, err := s.problems.Rating(ctx, p.Handle)
		if err != nil {
			return matchdomain.Challenge{}, err
		}
		if base <= 0 {
			base = s.engine.DefaultRating
		}

		lo := base + delta
		var hi *int
		if req.DeltaMax != nil {
			v := base + *req.DeltaMax
			hi = &v
		}
		problem, err := s.problems.Practice(ctx, p.Handle, &lo, hi)
		if err != nil {
			return matchdomain.Challenge{}, err
		}

		challenge := matchdomain.Challenge{
			Problem:    problem,
			Rating:     problem.RatingValue(),
			AssignedAt: s.now(),
		}
		_, err = s.registry.UpdateParticipant(ctx, req.UserID, func(p *matchdomain.Participant) error {
			if p.Challenge != nil {
				return &ActiveChallengeError{Challenge: *p.Challenge}
			}
			c := challenge
			p.Challenge = &c
			return nil
		})
		if err != nil {
			return matchdomain.Challenge{}, err
		}

		s.logger.InfoContext(ctx, "Challenge assigned",
			slog.String("user_id", req.UserID),
			slog.String("problem", problem.Key().String()),
			slog.Int("rating", challenge.Rating),
		)
		return challenge, nil
	})
}

// CompleteChallenge checks the judge for an accepted submission and awards
// the challenge points.
func (s *UserService) CompleteChallenge(ctx context.Context, userID string) (*Completion, error) {
	return withTelemetry(s, ctx, "CompleteChallenge", userID, func(ctx context.Context) (*Completion, error) {
		p, ok := s.registry.Participant(userID)
		if !ok {
			return nil, registry.ErrNotRegistered
		}
		if p.Challenge == nil {
			return nil, ErrNoChallenge
		}
		challenge := *p.Challenge

		if _, err := s.problems.CompletionTime(ctx, p.Handle, challenge.Problem); err != nil {
			return nil, err
		}

		points := s.points(challenge.Rating)
		updated, err := s.registry.UpdateParticipant(ctx, userID, func(p *matchdomain.Participant) error {
			if p.Challenge == nil || !p.Challenge.Problem.Same(challenge.Problem) {
				return ErrNoChallenge
			}
			p.ChallengeScore += points
			p.Challenge = nil
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "Challenge completed",
			slog.String("user_id", userID),
			slog.Int("points", points),
			slog.Int("score", updated.ChallengeScore),
		)
		return &Completion{Challenge: challenge, Points: points, Score: updated.ChallengeScore}, nil
	})
}

// SkipChallenge drops the outstanding challenge once the cooldown has passed,
// or straight away when forced.
func (s *UserService) SkipChallenge(ctx context.Context, userID string, force bool) (matchdomain.Challenge, error) {
	return withTelemetry(s, ctx, "SkipChallenge", userID, func(ctx context.Context) (matchdomain.Challenge, error) {
		var skipped matchdomain.Challenge
		_, err := s.registry.UpdateParticipant(ctx, userID, func(p *matchdomain.Participant) error {
			if p.Challenge == nil {
				return ErrNoChallenge
			}
			if !force {
				if left := p.Challenge.AssignedAt.Add(s.engine.ChallengeSkipAfter).Sub(s.now()); left > 0 {
					return &SkipTooEarlyError{Remaining: left}
				}
			}
			skipped = *p.Challenge
			p.Challenge = nil
			return nil
		})
		if err != nil {
			return matchdomain.Challenge{}, err
		}
		return skipped, nil
	})
}

// points looks up the reward for a problem of rating in the point table,
// whose first bracket is 800.
func (s *UserService) points(rating int) int {
	table := s.engine.PointTable
	if len(table) == 0 {
		return 0
	}
	i := rating/100 - 8
	i = max(0, min(i, len(table)-1))
	return table[i]
}

// IsExpected reports whether err is an answer for the user rather than a fault.
func IsExpected(err error) bool {
	return isDomainFailure(err)
}
