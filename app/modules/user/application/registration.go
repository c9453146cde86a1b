package userservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
)

// RegisterHandle proves ownership of a judge handle: the user gets a random
// problem and must submit a compilation error to it within the registration
// window.
func (s *UserService) RegisterHandle(ctx context.Context, req RegisterRequest) (matchdomain.Participant, error) {
	p, err := withTelemetry(s, ctx, "RegisterHandle", req.UserID, func(ctx context.Context) (matchdomain.Participant, error) {
		handle := strings.TrimSpace(req.Handle)
		if handle == "" {
			return matchdomain.Participant{}, ErrInvalidHandle
		}
		if err := s.checkAvailable(req.UserID, handle); err != nil {
			return matchdomain.Participant{}, err
		}

		canonical, err := s.problems.LookupHandle(ctx, handle)
		if err != nil {
			return matchdomain.Participant{}, err
		}
		if err := s.checkAvailable(req.UserID, canonical); err != nil {
			return matchdomain.Participant{}, err
		}

		problem, err := s.problems.RandomProblem(ctx)
		if err != nil {
			return matchdomain.Participant{}, err
		}
		s.announce(ctx, registrationPromptAnnouncement(req.ChannelID, req.UserID, problem, s.problems.ProblemURL(problem), s.engine.RegistrationWindow))

		timer := time.NewTimer(s.engine.RegistrationWindow)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return matchdomain.Participant{}, ctx.Err()
		case <-timer.C:
		}

		if err := s.verifyLatest(ctx, canonical, problem); err != nil {
			return matchdomain.Participant{}, err
		}

		participant := matchdomain.Participant{UserID: req.UserID, Handle: canonical}
		if err := s.registry.Register(ctx, participant); err != nil {
			return matchdomain.Participant{}, err
		}

		s.logger.InfoContext(ctx, "Participant registered",
			slog.String("user_id", req.UserID),
			slog.String("handle", canonical),
		)
		return participant, nil
	})
	if err != nil {
		s.announce(ctx, failureAnnouncement(req.ChannelID, req.UserID, err))
		return matchdomain.Participant{}, err
	}

	s.announce(ctx, registeredAnnouncement(req.ChannelID, p))
	return p, nil
}

func (s *UserService) checkAvailable(userID, handle string) error {
	if _, ok := s.registry.Participant(userID); ok {
		return registry.ErrAlreadyRegistered
	}
	if _, ok := s.registry.ParticipantByHandle(handle); ok {
		return fmt.Errorf("%w: %s", registry.ErrHandleTaken, handle)
	}
	return nil
}

// verifyLatest checks that the most recent submission of handle is a
// compilation error on problem.
func (s *UserService) verifyLatest(ctx context.Context, handle string, problem problemdomain.Problem) error {
	subs, err := s.problems.Submissions(ctx, handle, 1)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return ErrNoSubmission
	}
	latest := subs[0]
	if !latest.HasVerdict(problemdomain.VerdictCompilationError) {
		return ErrWrongVerdict
	}
	if !latest.Problem.Same(problem) {
		return ErrWrongProblem
	}
	return nil
}
