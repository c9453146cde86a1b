package problemdomain

import (
	"slices"
	"strings"
)

// ICPCContests keeps contests whose name mentions ICPC, ordered by id.
func ICPCContests(contests []Contest) []Contest {
	var out []Contest
	for _, c := range contests {
		if strings.Contains(c.Name, "ICPC") {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Contest) int { return a.ID - b.ID })
	return out
}

// SolveCounts returns, per standings problem, how many rows earned points on it.
func SolveCounts(st Standings) []int {
	counts := make([]int, len(st.Problems))
	for _, row := range st.Rows {
		for i, pts := range row.Points {
			if i < len(counts) && pts > 0 {
				counts[i]++
			}
		}
	}
	return counts
}

// OrderBySolveCount returns the standings problems sorted ascending by solve count.
func OrderBySolveCount(st Standings) []Problem {
	counts := SolveCounts(st)
	idx := make([]int, len(st.Problems))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return counts[a] - counts[b] })

	out := make([]Problem, len(idx))
	for i, j := range idx {
		out[i] = st.Problems[j]
	}
	return out
}
