package problemdomain

import (
	"slices"
	"time"
)

// RoundUpRating rounds r up to the next multiple of 100.
func RoundUpRating(r int) int {
	if r <= 0 {
		return 0
	}
	return (r + 99) / 100 * 100
}

// SolvedSet returns the identities of every accepted problem in subs.
func SolvedSet(subs []Submission) map[ProblemKey]bool {
	solved := make(map[ProblemKey]bool)
	for _, s := range subs {
		if s.Accepted() {
			solved[s.Problem.Key()] = true
		}
	}
	return solved
}

// Candidates returns the problems rated exactly RoundUpRating(target) that the
// participant has not solved, ordered by contest id.
func Candidates(catalog []Problem, target int, subs []Submission) ([]Problem, error) {
	rating := RoundUpRating(target)
	solved := SolvedSet(subs)

	var out []Problem
	for _, p := range catalog {
		if p.Rating == nil || *p.Rating != rating {
			continue
		}
		if solved[p.Key()] {
			continue
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, ErrNoCandidates
	}

	slices.SortStableFunc(out, func(a, b Problem) int {
		return a.ContestID - b.ContestID
	})
	return out, nil
}

// Intersect keeps the problems of the first list present in every other list,
// preserving the first list's order.
func Intersect(lists ...[]Problem) ([]Problem, error) {
	if len(lists) == 0 {
		return nil, ErrNoCommonProblem
	}

	out := slices.Clone(lists[0])
	for _, other := range lists[1:] {
		keys := make(map[ProblemKey]bool, len(other))
		for _, p := range other {
			keys[p.Key()] = true
		}
		out = slices.DeleteFunc(out, func(p Problem) bool { return !keys[p.Key()] })
	}

	if len(out) == 0 {
		return nil, ErrNoCommonProblem
	}
	return out, nil
}

// Exclude drops every problem in list that appears in taken.
func Exclude(list []Problem, taken []Problem) []Problem {
	if len(taken) == 0 {
		return list
	}
	keys := make(map[ProblemKey]bool, len(taken))
	for _, p := range taken {
		keys[p.Key()] = true
	}
	return slices.DeleteFunc(slices.Clone(list), func(p Problem) bool { return keys[p.Key()] })
}

// CompletionTime returns the earliest accepted submission time for problem.
func CompletionTime(subs []Submission, problem Problem) (time.Time, error) {
	var earliest time.Time
	found := false
	for _, s := range subs {
		if !s.Accepted() || !s.Problem.Same(problem) {
			continue
		}
		if !found || s.CreationTime.Before(earliest) {
			earliest = s.CreationTime
			found = true
		}
	}
	if !found {
		return time.Time{}, ErrNotCompleted
	}
	return earliest, nil
}
