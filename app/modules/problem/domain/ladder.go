package problemdomain

// ClampRating bounds r to [minRating, maxRating].
func ClampRating(r, minRating, maxRating int) int {
	return max(minRating, min(r, maxRating))
}

// NormalizeIncrement rounds an increment down to a multiple of 100, never below 100.
func NormalizeIncrement(increment int) int {
	return max(100, increment/100*100)
}

// RatingLadder returns count ratings centred on target: index count/2 holds
// target and neighbours step by increment, clamped to [minRating, maxRating].
func RatingLadder(count, target, increment, minRating, maxRating int) []int {
	if count <= 0 {
		return nil
	}
	ratings := make([]int, count)
	mid := count / 2
	ratings[mid] = ClampRating(target, minRating, maxRating)
	for i := mid - 1; i >= 0; i-- {
		ratings[i] = max(minRating, ratings[i+1]-increment)
	}
	for i := mid + 1; i < count; i++ {
		ratings[i] = min(maxRating, ratings[i-1]+increment)
	}
	return ratings
}

// PointValues scores each rung relative to the lowest: rating - ratings[0] + 100.
func PointValues(ratings []int) []int {
	points := make([]int, len(ratings))
	for i, r := range ratings {
		points[i] = r - ratings[0] + 100
	}
	return points
}
