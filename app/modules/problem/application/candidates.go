package problemservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"golang.org/x/sync/errgroup"
)

// RosterCandidates returns the problems at rating that no handle has solved,
// ordered by contest id.
func (s *ProblemService) RosterCandidates(ctx context.Context, handles []string, rating int) ([]problemdomain.Problem, error) {
	return withTelemetry(s, ctx, "RosterCandidates", strings.Join(handles, ","), func(ctx context.Context) ([]problemdomain.Problem, error) {
		catalog, subs, err := s.rosterSnapshot(ctx, handles)
		if err != nil {
			return nil, err
		}
		return rosterCandidates(catalog, subs, rating)
	})
}

// rosterSnapshot fetches the catalog and every handle's submissions concurrently.
func (s *ProblemService) rosterSnapshot(ctx context.Context, handles []string) ([]problemdomain.Problem, [][]problemdomain.Submission, error) {
	if len(handles) == 0 {
		return nil, nil, ErrNoHandles
	}

	var catalog []problemdomain.Problem
	subs := make([][]problemdomain.Submission, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.catalog.ProblemCatalog(gctx)
		if err != nil {
			return fmt.Errorf("fetch catalog: %w", err)
		}
		catalog = c
		return nil
	})
	for i, handle := range handles {
		g.Go(func() error {
			list, err := s.judge.Submissions(gctx, handle, s.engine.SubmissionLimit)
			if err != nil {
				return fmt.Errorf("fetch submissions of %s: %w", handle, err)
			}
			subs[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return catalog, subs, nil
}

func rosterCandidates(catalog []problemdomain.Problem, subs [][]problemdomain.Submission, rating int) ([]problemdomain.Problem, error) {
	lists := make([][]problemdomain.Problem, 0, len(subs))
	for _, list := range subs {
		candidates, err := problemdomain.Candidates(catalog, rating, list)
		if err != nil {
			return nil, err
		}
		lists = append(lists, candidates)
	}
	return problemdomain.Intersect(lists...)
}

// TargetRating averages the rated participants, floored to hundreds. Handles
// whose rating cannot be fetched or who are unrated are skipped.
func (s *ProblemService) TargetRating(ctx context.Context, handles []string) int {
	total, rated := 0, 0
	for _, handle := range handles {
		r, err := s.judge.Rating(ctx, handle)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping rating of participant",
				slog.String("handle", handle),
				slog.Any("error", err),
			)
			continue
		}
		if r <= 0 {
			continue
		}
		total += r
		rated++
	}
	if rated == 0 {
		return s.engine.DefaultRating
	}
	return total / rated / 100 * 100
}

// target resolves the rating a match is centred on.
func (s *ProblemService) target(ctx context.Context, handles []string, hint *int) int {
	rating := s.engine.DefaultRating
	if hint != nil {
		rating = *hint
	} else if len(handles) > 0 {
		rating = s.TargetRating(ctx, handles)
	}
	return problemdomain.ClampRating(rating, s.engine.MinRating, s.engine.MaxRating)
}
