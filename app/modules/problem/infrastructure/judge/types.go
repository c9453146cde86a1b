package judge

import (
	"encoding/json"
	"fmt"
	"time"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
)

// FailedError is a FAILED answer from the API. It counts as the judge being
// unavailable except where a caller interprets the comment.
type FailedError struct {
	Method  string
	Comment string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", problemdomain.ErrJudgeUnavailable, e.Method, e.Comment)
}

func (e *FailedError) Unwrap() error { return problemdomain.ErrJudgeUnavailable }

// envelope is the common Codeforces response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type apiProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating"`
	Tags      []string `json:"tags"`
}

func (p apiProblem) toDomain() problemdomain.Problem {
	return problemdomain.Problem{
		ContestID: p.ContestID,
		Index:     p.Index,
		Name:      p.Name,
		Rating:    p.Rating,
		Tags:      p.Tags,
	}
}

type problemsetResult struct {
	Problems []apiProblem `json:"problems"`
}

type apiSubmission struct {
	ID                  int64      `json:"id"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Problem             apiProblem `json:"problem"`
	Verdict             *string    `json:"verdict"`
}

func (s apiSubmission) toDomain() problemdomain.Submission {
	return problemdomain.Submission{
		Problem:      s.Problem.toDomain(),
		Verdict:      s.Verdict,
		CreationTime: time.Unix(s.CreationTimeSeconds, 0).UTC(),
	}
}

type apiRatingChange struct {
	ContestID int `json:"contestId"`
	OldRating int `json:"oldRating"`
	NewRating int `json:"newRating"`
}

type apiUser struct {
	Handle string `json:"handle"`
	Rating int    `json:"rating"`
}

type apiContest struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	StartTimeSeconds int64  `json:"startTimeSeconds"`
}

func (c apiContest) toDomain() problemdomain.Contest {
	return problemdomain.Contest{
		ID:        c.ID,
		Name:      c.Name,
		Phase:     c.Phase,
		StartTime: time.Unix(c.StartTimeSeconds, 0).UTC(),
	}
}

type apiStandings struct {
	Contest  apiContest   `json:"contest"`
	Problems []apiProblem `json:"problems"`
	Rows     []struct {
		ProblemResults []struct {
			Points float64 `json:"points"`
		} `json:"problemResults"`
	} `json:"rows"`
}

func (s apiStandings) toDomain() problemdomain.Standings {
	out := problemdomain.Standings{Contest: s.Contest.toDomain()}
	for _, p := range s.Problems {
		out.Problems = append(out.Problems, p.toDomain())
	}
	for _, r := range s.Rows {
		row := problemdomain.StandingsRow{Points: make([]float64, len(r.ProblemResults))}
		for i, pr := range r.ProblemResults {
			row.Points[i] = pr.Points
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
