package problemdomain

import (
	"fmt"
	"time"
)

// Verdicts reported by the judge.
const (
	VerdictOK               = "OK"
	VerdictCompilationError = "COMPILATION_ERROR"
)

// gymContestThreshold is the first contest id used for gym contests.
const gymContestThreshold = 100000

// ProblemKey is the identity of a problem.
type ProblemKey struct {
	ContestID int
	Index     string
}

func (k ProblemKey) String() string {
	return fmt.Sprintf("%d%s", k.ContestID, k.Index)
}

// Problem is a judge problem. Unrated problems have a nil Rating.
type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Key returns the problem identity.
func (p Problem) Key() ProblemKey {
	return ProblemKey{ContestID: p.ContestID, Index: p.Index}
}

// Same reports whether p and other are the same problem.
func (p Problem) Same(other Problem) bool {
	return p.Key() == other.Key()
}

// RatingValue returns the rating, or 0 for unrated problems.
func (p Problem) RatingValue() int {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// URL returns the problem page under base, e.g. https://codeforces.com.
func (p Problem) URL(base string) string {
	if p.ContestID >= gymContestThreshold {
		return fmt.Sprintf("%s/gym/%d/problem/%s", base, p.ContestID, p.Index)
	}
	return fmt.Sprintf("%s/problemset/problem/%d/%s", base, p.ContestID, p.Index)
}

// Submission is one judge submission. Verdict is nil while testing.
type Submission struct {
	Problem      Problem   `json:"problem"`
	Verdict      *string   `json:"verdict,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// HasVerdict reports whether the submission has exactly verdict v.
func (s Submission) HasVerdict(v string) bool {
	return s.Verdict != nil && *s.Verdict == v
}

// Accepted reports whether the submission was accepted.
func (s Submission) Accepted() bool {
	return s.HasVerdict(VerdictOK)
}

// Contest is a judge contest.
type Contest struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phase     string    `json:"phase"`
	StartTime time.Time `json:"startTime"`
}

// StandingsRow holds the points one contestant earned per problem.
type StandingsRow struct {
	Points []float64 `json:"points"`
}

// Standings is a contest scoreboard; Rows[i].Points align with Problems.
type Standings struct {
	Contest  Contest        `json:"contest"`
	Problems []Problem      `json:"problems"`
	Rows     []StandingsRow `json:"rows"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
