package problemservice

import "errors"

var (
	// ErrInvalidRatingRange means the requested maximum is below the minimum.
	ErrInvalidRatingRange = errors.New("invalid rating range")
	// ErrInvalidProblemCount means the requested number of problems is out of bounds.
	ErrInvalidProblemCount = errors.New("invalid problem count")
	// ErrNoHandles means a problem was requested for nobody.
	ErrNoHandles = errors.New("no participant handles given")
)
