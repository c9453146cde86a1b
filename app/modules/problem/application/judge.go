package problemservice

import (
	"context"
	"time"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// Submissions fetches a participant's most recent submissions.
func (s *ProblemService) Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
	if limit <= 0 {
		limit = s.engine.SubmissionLimit
	}
	return s.judge.Submissions(ctx, handle, limit)
}

// CompletionTime returns the earliest accepted submission of handle for problem.
func (s *ProblemService) CompletionTime(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error) {
	return withTelemetry(s, ctx, "CompletionTime", handle, func(ctx context.Context) (time.Time, error) {
		subs, err := s.judge.Submissions(ctx, handle, s.engine.SubmissionLimit)
		if err != nil {
			return time.Time{}, err
		}
		return problemdomain.CompletionTime(subs, problem)
	})
}

// Rating returns the participant's current judge rating.
func (s *ProblemService) Rating(ctx context.Context, handle string) (int, error) {
	return s.judge.Rating(ctx, handle)
}

// LookupHandle returns the canonical spelling of handle.
func (s *ProblemService) LookupHandle(ctx context.Context, handle string) (string, error) {
	return withTelemetry(s, ctx, "LookupHandle", handle, func(ctx context.Context) (string, error) {
		return s.judge.LookupHandle(ctx, handle)
	})
}
