package problemservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// RandomProblem returns a uniformly random rated catalog problem.
func (s *ProblemService) RandomProblem(ctx context.Context) (problemdomain.Problem, error) {
	return withTelemetry(s, ctx, "RandomProblem", "", func(ctx context.Context) (problemdomain.Problem, error) {
		catalog, err := s.catalog.ProblemCatalog(ctx)
		if err != nil {
			return problemdomain.Problem{}, err
		}
		rated := slices.DeleteFunc(slices.Clone(catalog), func(p problemdomain.Problem) bool {
			return p.Rating == nil
		})
		if len(rated) == 0 {
			return problemdomain.Problem{}, problemdomain.ErrNoCandidates
		}
		return rated[s.selector.IntRange(0, len(rated)-1)], nil
	})
}

// Practice recommends an unsolved problem. Without a rating the participant's
// judge rating is used; with a range a uniform rating is drawn first.
func (s *ProblemService) Practice(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error) {
	return withTelemetry(s, ctx, "Practice", handle, func(ctx context.Context) (problemdomain.Problem, error) {
		target, err := s.practiceRating(ctx, handle, rating, ratingMax)
		if err != nil {
			return problemdomain.Problem{}, err
		}

		catalog, subs, err := s.rosterSnapshot(ctx, []string{handle})
		if err != nil {
			return problemdomain.Problem{}, err
		}
		candidates, err := problemdomain.Candidates(catalog, target, subs[0])
		if err != nil {
			return problemdomain.Problem{}, err
		}
		return problemdomain.Pick(s.selector, candidates)
	})
}

func (s *ProblemService) practiceRating(ctx context.Context, handle string, rating, ratingMax *int) (int, error) {
	if rating == nil {
		r, err := s.judge.Rating(ctx, handle)
		if err != nil {
			return 0, err
		}
		if r <= 0 {
			r = s.engine.DefaultRating
		}
		return problemdomain.ClampRating(r, s.engine.MinRating, s.engine.MaxRating), nil
	}

	lo := *rating
	if ratingMax == nil {
		return problemdomain.ClampRating(lo, s.engine.MinRating, s.engine.MaxRating), nil
	}
	hi := *ratingMax
	if hi < lo {
		return 0, fmt.Errorf("%w: %d > %d", ErrInvalidRatingRange, lo, hi)
	}
	lo = problemdomain.ClampRating(lo, s.engine.MinRating, s.engine.MaxRating)
	hi = problemdomain.ClampRating(hi, s.engine.MinRating, s.engine.MaxRating)
	return s.selector.IntRange(lo, hi), nil
}

// ICPC picks a contest from the ICPC-style gym contests, weighted towards the
// most recent, and draws count problems favouring median solve counts.
func (s *ProblemService) ICPC(ctx context.Context, count int) (*ICPCSet, error) {
	return withTelemetry(s, ctx, "ICPC", fmt.Sprint(count), func(ctx context.Context) (*ICPCSet, error) {
		if count < 1 || count > s.engine.MaxICPCProblems {
			return nil, fmt.Errorf("%w: %d", ErrInvalidProblemCount, count)
		}

		contests, err := s.judge.Contests(ctx, true)
		if err != nil {
			return nil, err
		}
		icpc := problemdomain.ICPCContests(contests)
		if len(icpc) == 0 {
			return nil, problemdomain.ErrNoCandidates
		}
		contest, err := problemdomain.Pick(s.selector, icpc)
		if err != nil {
			return nil, err
		}

		standings, err := s.judge.Standings(ctx, contest.ID)
		if err != nil {
			return nil, err
		}
		ordered := problemdomain.OrderBySolveCount(standings)
		if len(ordered) == 0 {
			return nil, problemdomain.ErrNoCandidates
		}

		set := &ICPCSet{Contest: contest}
		if standings.Contest.ID != 0 {
			set.Contest = standings.Contest
		}
		for len(set.Problems) < count && len(ordered) > 0 {
			i, err := s.selector.NormalIndex(len(ordered))
			if err != nil {
				return nil, err
			}
			set.Problems = append(set.Problems, ordered[i])
			ordered = slices.Delete(ordered, i, i+1)
		}

		s.logger.InfoContext(ctx, "ICPC problems selected",
			slog.Int("contest_id", set.Contest.ID),
			slog.Int("count", len(set.Problems)),
		)
		return set, nil
	})
}

var _ Service = (*ProblemService)(nil)
