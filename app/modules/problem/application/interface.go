package problemservice

import (
	"context"
	"time"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// Judge is the subset of the judge client the service needs beyond the catalog.
type Judge interface {
	Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error)
	Rating(ctx context.Context, handle string) (int, error)
	LookupHandle(ctx context.Context, handle string) (string, error)
	Contests(ctx context.Context, gym bool) ([]problemdomain.Contest, error)
	Standings(ctx context.Context, contestID int) (problemdomain.Standings, error)
}

// CatalogSource provides the problem catalog, possibly cached.
type CatalogSource interface {
	ProblemCatalog(ctx context.Context) ([]problemdomain.Problem, error)
}

// LockoutSpec describes the problem ladder of a lockout.
type LockoutSpec struct {
	Count      int
	RatingHint *int
	Increment  *int
}

// LockoutSet is an assigned lockout ladder; slices are index-aligned.
type LockoutSet struct {
	Problems []problemdomain.Problem
	Ratings  []int
	Points   []int
}

// ICPCSet is a recommendation drawn from one ICPC-style contest.
type ICPCSet struct {
	Contest  problemdomain.Contest
	Problems []problemdomain.Problem
}

// Service resolves problems for matches and practice.
type Service interface {
	// RosterCandidates returns the problems at rating that no handle has solved.
	RosterCandidates(ctx context.Context, handles []string, rating int) ([]problemdomain.Problem, error)

	// TargetRating averages the participants' ratings, floored to hundreds.
	TargetRating(ctx context.Context, handles []string) int

	// AssignDuel picks one problem none of the handles has solved.
	AssignDuel(ctx context.Context, handles []string, ratingHint *int) (problemdomain.Problem, error)

	// AssignLockout picks one problem per ladder rung.
	AssignLockout(ctx context.Context, handles []string, spec LockoutSpec) (*LockoutSet, error)

	// Submissions fetches a participant's submissions.
	Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error)

	// CompletionTime returns the earliest accepted submission for problem.
	CompletionTime(ctx context.Context, handle string, problem problemdomain.Problem) (time.Time, error)

	// Rating returns a participant's current judge rating (0 if unrated).
	Rating(ctx context.Context, handle string) (int, error)

	// LookupHandle verifies handle exists and returns its canonical spelling.
	LookupHandle(ctx context.Context, handle string) (string, error)

	// RandomProblem returns a uniformly random catalog problem.
	RandomProblem(ctx context.Context) (problemdomain.Problem, error)

	// Practice recommends an unsolved problem near the requested rating.
	Practice(ctx context.Context, handle string, rating, ratingMax *int) (problemdomain.Problem, error)

	// ICPC recommends count problems of median solve-count difficulty from one ICPC contest.
	ICPC(ctx context.Context, count int) (*ICPCSet, error)

	// ProblemURL links to a problem statement.
	ProblemURL(problem problemdomain.Problem) string
}
