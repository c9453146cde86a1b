package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
)

func (s *UserService) announce(ctx context.Context, ann chat.Announcement) {
	if _, err := s.announcer.Post(ctx, ann); err != nil {
		s.logger.WarnContext(ctx, "Failed to post announcement",
			slog.String("channel_id", ann.ChannelID),
			slog.Any("error", err),
		)
	}
}

// FailureText is the user-facing explanation of a user operation error.
func FailureText(err error) string {
	var (
		active *ActiveChallengeError
		early  *SkipTooEarlyError
	)
	switch {
	case errors.Is(err, ErrInvalidHandle):
		return "Tell me which handle to register."
	case errors.Is(err, registry.ErrAlreadyRegistered):
		return "You already set your handle."
	case errors.Is(err, registry.ErrHandleTaken):
		return "That handle belongs to someone else."
	case errors.Is(err, registry.ErrNotRegistered):
		return "Set your handle first."
	case errors.Is(err, problemdomain.ErrHandleNotFound):
		return "No Codeforces user has that handle."
	case errors.Is(err, ErrNoSubmission):
		return "You have no submissions yet."
	case errors.Is(err, ErrWrongVerdict):
		return "Your latest submission is not a `COMPILATION_ERROR`."
	case errors.Is(err, ErrWrongProblem):
		return "You need to submit a `COMPILATION_ERROR` to the required problem."
	case errors.Is(err, ErrNoChallenge):
		return "You don't have an active challenge."
	case errors.As(err, &active):
		return "You still have an active challenge."
	case errors.As(err, &early):
		return fmt.Sprintf("Keep trying, you can skip in `%s`.", formatDuration(early.Remaining))
	case errors.Is(err, problemdomain.ErrNotCompleted):
		return "You haven't completed the challenge yet, keep trying."
	case errors.Is(err, problemservice.ErrInvalidRatingRange):
		return "That rating range is empty."
	case errors.Is(err, problemdomain.ErrNoCandidates):
		return "No unsolved problem fits that rating."
	case errors.Is(err, problemdomain.ErrJudgeUnavailable):
		return "Codeforces is not responding, try again later."
	case errors.Is(err, ErrShuttingDown):
		return "The bot is restarting, try again in a minute."
	default:
		return "Something went wrong, try again later."
	}
}

func failureAnnouncement(channelID, userID string, err error) chat.Announcement {
	return chat.ErrorAnnouncement(channelID, userID, FailureText(err))
}

func registrationPromptAnnouncement(channelID, userID string, problem problemdomain.Problem, url string, window time.Duration) chat.Announcement {
	return chat.Announcement{
		ChannelID: channelID,
		Content: fmt.Sprintf("%s Make a `COMPILATION_ERROR` submission to this problem within %d seconds.",
			chat.Mention(userID), int(window.Seconds())),
		Mentions: []string{userID},
		Title:    fmt.Sprintf("%s. %s", problem.Key(), problem.Name),
		URL:      url,
		Fields:   []chat.Field{{Name: "Rating", Value: fmt.Sprintf("%d", problem.RatingValue())}},
		Color:    chat.ColorInvite,
	}
}

func registeredAnnouncement(channelID string, p matchdomain.Participant) chat.Announcement {
	return chat.Announcement{
		ChannelID:   channelID,
		Description: fmt.Sprintf("%s has been registered with handle `%s`.", chat.Mention(p.UserID), p.Handle),
		Color:       chat.ColorFinished,
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02dh %02dm %02ds", int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second))
}
