package matchdomain

import (
	"slices"
	"time"
)

// Standing is one leaderboard row.
type Standing struct {
	Member Member
	Score  int
	Rank   int
}

// Locked reports whether problem i can still be claimed.
func (m Match) Locked(i int) bool {
	return i >= 0 && i < len(m.PointValues) && m.PointValues[i] != 0
}

// LockedSum is the total worth of every unclaimed problem.
func (m Match) LockedSum() int {
	total := 0
	for _, p := range m.PointValues {
		total += p
	}
	return total
}

// Claim awards problem i to roster position member and zeroes its point value.
func (m *Match) Claim(problem, member int) error {
	if problem < 0 || problem >= len(m.PointValues) {
		return ErrNoSuchProblem
	}
	if member < 0 || member >= len(m.Scores) {
		return ErrNotMember
	}
	if m.PointValues[problem] == 0 {
		return ErrAlreadyClaimed
	}
	m.Scores[member] += m.PointValues[problem]
	m.PointValues[problem] = 0
	return nil
}

// LeaderboardIndices returns roster positions sorted by descending score,
// keeping roster order among equal scores.
func (m Match) LeaderboardIndices() []int {
	idx := make([]int, len(m.Scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return m.Scores[b] - m.Scores[a] })
	return idx
}

// Ranking is the leaderboard with competition ranks: equal scores share a
// rank and the next distinct score skips ahead.
func (m Match) Ranking() []Standing {
	idx := m.LeaderboardIndices()
	out := make([]Standing, len(idx))
	for pos, i := range idx {
		rank := pos + 1
		if pos > 0 && m.Scores[i] == out[pos-1].Score {
			rank = out[pos-1].Rank
		}
		out[pos] = Standing{Member: m.Roster[i], Score: m.Scores[i], Rank: rank}
	}
	return out
}

// Decided reports whether a lockout is over at now: the time budget is spent,
// at most one participant remains, or the runner-up cannot catch the leader
// even by claiming every unclaimed problem.
func (m Match) Decided(now time.Time) bool {
	if m.Expired(now) || len(m.Roster) <= 1 {
		return true
	}
	idx := m.LeaderboardIndices()
	return m.Scores[idx[1]]+m.LockedSum() < m.Scores[idx[0]]
}

// Conclude sets the terminal lockout state: a sole survivor wins by walkover,
// a unique leader with a nonzero score wins, anything else is a draw, and an
// empty roster is abandoned.
func (m *Match) Conclude() {
	switch len(m.Roster) {
	case 0:
		m.State = StateAbandoned
		m.WinnerID = ""
		return
	case 1:
		m.Win(m.Roster[0].UserID)
		return
	}

	idx := m.LeaderboardIndices()
	leader, second := m.Scores[idx[0]], m.Scores[idx[1]]
	if leader > 0 && leader > second {
		m.Win(m.Roster[idx[0]].UserID)
		return
	}
	m.State = StateDrawn
	m.WinnerID = ""
}
