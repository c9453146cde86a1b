package matchdomain

import "errors"

var (
	// ErrNotMember means the user is not on the match roster.
	ErrNotMember = errors.New("user is not a member of the match")
	// ErrAlreadyClaimed means the problem's points were already awarded.
	ErrAlreadyClaimed = errors.New("problem already claimed")
	// ErrNoSuchProblem means a problem index is out of range.
	ErrNoSuchProblem = errors.New("no such problem in match")
)
