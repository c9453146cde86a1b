package problemdomain

import "errors"

var (
	// ErrNoCandidates means no unsolved problem has the requested rating.
	ErrNoCandidates = errors.New("no candidate problems")
	// ErrNoCommonProblem means the participants share no unsolved problem at the rating.
	ErrNoCommonProblem = errors.New("no problem left unsolved by every participant")
	// ErrNotCompleted means the participant has no accepted submission for the problem.
	ErrNotCompleted = errors.New("problem not completed")
	// ErrEmptySelection means the selector was handed nothing to pick from.
	ErrEmptySelection = errors.New("cannot pick from an empty list")
)

var (
	// ErrJudgeUnavailable covers every judge failure: transport, status, payload or open breaker.
	ErrJudgeUnavailable = errors.New("judge unavailable")
	// ErrHandleNotFound means the judge has no user with the handle.
	ErrHandleNotFound = errors.New("handle not found on judge")
)
