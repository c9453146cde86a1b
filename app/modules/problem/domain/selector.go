package problemdomain

import (
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Selector draws biased random positions from ordered lists. It is safe for
// concurrent use.
type Selector struct {
	mu    sync.Mutex
	rng   *rand.Rand
	alpha float64
}

// NewSelector returns a Selector seeded with seed; equal seeds give equal picks.
func NewSelector(alpha float64, seed uint64) *Selector {
	return &Selector{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		alpha: alpha,
	}
}

// NewRandomSelector returns a Selector seeded from the clock.
func NewRandomSelector(alpha float64) *Selector {
	return NewSelector(alpha, uint64(time.Now().UnixNano()))
}

// Weight is the position weight (x/n)^alpha * n + 1.
func Weight(x, n int, alpha float64) float64 {
	return math.Pow(float64(x)/float64(n), alpha)*float64(n) + 1
}

// PositionWeights returns Weight for every position of an n-item list.
func PositionWeights(n int, alpha float64) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = Weight(i, n, alpha)
	}
	return weights
}

// NormalWeights returns the normal density at each position of an n-item
// list, with mean n/2 and standard deviation n/4.
func NormalWeights(n int) []float64 {
	dist := distuv.Normal{Mu: float64(n) / 2, Sigma: float64(n) / 4}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = dist.Prob(float64(i))
	}
	return weights
}

// Index draws a position of an n-item list with PositionWeights.
func (s *Selector) Index(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptySelection
	}
	return s.sample(PositionWeights(n, s.alpha)), nil
}

// NormalIndex draws a position of an n-item list with NormalWeights.
func (s *Selector) NormalIndex(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptySelection
	}
	return s.sample(NormalWeights(n)), nil
}

// IntRange returns a uniform integer in [lo, hi].
func (s *Selector) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Selector) sample(weights []float64) int {
	total := floats.Sum(weights)

	s.mu.Lock()
	r := s.rng.Float64() * total
	s.mu.Unlock()

	cumulative := slices.Clone(weights)
	floats.CumSum(cumulative, weights)
	for i, c := range cumulative {
		if r < c {
			return i
		}
	}
	return len(weights) - 1
}

// Pick returns one item of ordered, biased towards its end.
func Pick[T any](s *Selector, ordered []T) (T, error) {
	var zero T
	i, err := s.Index(len(ordered))
	if err != nil {
		return zero, err
	}
	return ordered[i], nil
}

// PickNormal returns one item of ordered, biased towards its middle.
func PickNormal[T any](s *Selector, ordered []T) (T, error) {
	var zero T
	i, err := s.NormalIndex(len(ordered))
	if err != nil {
		return zero, err
	}
	return ordered[i], nil
}
