package problemservice

import (
	"context"
	"log/slog"
	"strings"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// AssignDuel picks one problem none of the handles has solved.
func (s *ProblemService) AssignDuel(ctx context.Context, handles []string, ratingHint *int) (problemdomain.Problem, error) {
	return withTelemetry(s, ctx, "AssignDuel", strings.Join(handles, ","), func(ctx context.Context) (problemdomain.Problem, error) {
		rating := s.target(ctx, handles, ratingHint)

		catalog, subs, err := s.rosterSnapshot(ctx, handles)
		if err != nil {
			return problemdomain.Problem{}, err
		}
		candidates, err := rosterCandidates(catalog, subs, rating)
		if err != nil {
			return problemdomain.Problem{}, err
		}

		problem, err := problemdomain.Pick(s.selector, candidates)
		if err != nil {
			return problemdomain.Problem{}, err
		}
		s.logger.InfoContext(ctx, "Duel problem assigned",
			slog.String("problem", problem.Key().String()),
			slog.Int("rating", rating),
			slog.Int("candidates", len(candidates)),
		)
		return problem, nil
	})
}

// AssignLockout builds a rating ladder around the roster target and picks one
// distinct problem per rung.
func (s *ProblemService) AssignLockout(ctx context.Context, handles []string, spec LockoutSpec) (*LockoutSet, error) {
	return withTelemetry(s, ctx, "AssignLockout", strings.Join(handles, ","), func(ctx context.Context) (*LockoutSet, error) {
		count := spec.Count
		if count == 0 {
			count = s.engine.DefaultProblemCount
		}
		if count < 1 || count > s.engine.MaxProblemCount {
			return nil, ErrInvalidProblemCount
		}

		increment := s.engine.DefaultIncrement
		if spec.Increment != nil {
			increment = *spec.Increment
		}
		increment = problemdomain.NormalizeIncrement(increment)

		target := s.target(ctx, handles, spec.RatingHint)
		ratings := problemdomain.RatingLadder(count, target, increment, s.engine.MinRating, s.engine.MaxRating)

		catalog, subs, err := s.rosterSnapshot(ctx, handles)
		if err != nil {
			return nil, err
		}

		set := &LockoutSet{
			Problems: make([]problemdomain.Problem, 0, count),
			Ratings:  ratings,
			Points:   problemdomain.PointValues(ratings),
		}
		for _, rating := range ratings {
			candidates, err := rosterCandidates(catalog, subs, rating)
			if err != nil {
				return nil, err
			}
			candidates = problemdomain.Exclude(candidates, set.Problems)
			if len(candidates) == 0 {
				return nil, problemdomain.ErrNoCommonProblem
			}
			problem, err := problemdomain.Pick(s.selector, candidates)
			if err != nil {
				return nil, err
			}
			set.Problems = append(set.Problems, problem)
		}

		s.logger.InfoContext(ctx, "Lockout problems assigned",
			slog.Any("ratings", ratings),
			slog.Int("count", count),
		)
		return set, nil
	})
}
