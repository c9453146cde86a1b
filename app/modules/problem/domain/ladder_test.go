package problemdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingLadder(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		target    int
		increment int
		want      []int
	}{
		{name: "five rungs centred", count: 5, target: 1500, increment: 100, want: []int{1300, 1400, 1500, 1600, 1700}},
		{name: "even count puts target right of centre", count: 4, target: 1500, increment: 200, want: []int{1100, 1300, 1500, 1700}},
		{name: "clamped at the bottom", count: 5, target: 900, increment: 100, want: []int{800, 800, 900, 1000, 1100}},
		{name: "clamped at the top", count: 3, target: 3500, increment: 300, want: []int{3200, 3500, 3500}},
		{name: "target above max is clamped", count: 1, target: 4000, increment: 100, want: []int{3500}},
		{name: "zero count", count: 0, target: 1500, increment: 100, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RatingLadder(tt.count, tt.target, tt.increment, 800, 3500))
		})
	}
}

func TestPointValues(t *testing.T) {
	assert.Equal(t, []int{100, 200, 300}, PointValues([]int{1400, 1500, 1600}))
	assert.Equal(t, []int{100, 100, 200}, PointValues([]int{800, 800, 900}))
	assert.Empty(t, PointValues(nil))
}

func TestNormalizeIncrement(t *testing.T) {
	assert.Equal(t, 100, NormalizeIncrement(0))
	assert.Equal(t, 100, NormalizeIncrement(-300))
	assert.Equal(t, 100, NormalizeIncrement(150))
	assert.Equal(t, 200, NormalizeIncrement(299))
}
