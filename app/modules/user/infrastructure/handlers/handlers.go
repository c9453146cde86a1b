package userhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	userevents "github.com/Black-And-White-Club/lockout-bot/app/events/user"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	userservice "github.com/Black-And-White-Club/lockout-bot/app/modules/user/application"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// UserHandlers implements the Handlers interface.
type UserHandlers struct {
	service userservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewUserHandlers creates a new UserHandlers instance.
func NewUserHandlers(service userservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleRegisterRequested runs the handle verification in the background; it
// outlives the message and announces its own outcome.
func (h *UserHandlers) HandleRegisterRequested(ctx context.Context, payload *userevents.HandleRegisterRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "UserHandlers.HandleRegisterRequested")
	defer span.End()

	req := userservice.RegisterRequest{
		ChannelID: payload.ChannelID,
		UserID:    payload.UserID,
		Handle:    payload.Handle,
	}
	err := h.service.Go(ctx, func(ctx context.Context) {
		if _, err := h.service.RegisterHandle(ctx, req); err != nil {
			h.logger.InfoContext(ctx, "Handle not registered",
				slog.String("user_id", req.UserID),
				slog.String("handle", req.Handle),
				slog.String("reason", err.Error()),
			)
		}
	})
	if err != nil {
		return h.failure(ctx, payload.ChannelID, payload.UserID, err), nil
	}
	return nil, nil
}

// HandleChallengeRequested assigns a challenge, or shows the one still open.
func (h *UserHandlers) HandleChallengeRequested(ctx context.Context, payload *userevents.ChallengeRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "UserHandlers.HandleChallengeRequested")
	defer span.End()

	c, err := h.service.Challenge(ctx, userservice.ChallengeRequest{
		UserID:   payload.UserID,
		Delta:    payload.Delta,
		DeltaMax: payload.DeltaMax,
	})
	var active *userservice.ActiveChallengeError
	switch {
	case errors.As(err, &active):
		return reply(h.challengeAnnouncement(payload.ChannelID, payload.UserID, active.Challenge, userservice.FailureText(err), chat.ColorError)), nil
	case err != nil:
		return h.failure(ctx, payload.ChannelID, payload.UserID, err), nil
	}
	return reply(h.challengeAnnouncement(payload.ChannelID, payload.UserID, c, "Here is your challenge.", chat.ColorActive)), nil
}

// HandleChallengeCompleted awards the challenge points.
func (h *UserHandlers) HandleChallengeCompleted(ctx context.Context, payload *userevents.ChallengeCompletedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "UserHandlers.HandleChallengeCompleted")
	defer span.End()

	done, err := h.service.CompleteChallenge(ctx, payload.UserID)
	if err != nil {
		return h.failure(ctx, payload.ChannelID, payload.UserID, err), nil
	}
	return reply(chat.Announcement{
		ChannelID: payload.ChannelID,
		Content:   chat.Mention(payload.UserID),
		Mentions:  []string{payload.UserID},
		Description: fmt.Sprintf("Congrats! You finished the challenge and received %d point(s). Your score is now %d.",
			done.Points, done.Score),
		Color: chat.ColorFinished,
	}), nil
}

// HandleChallengeSkipRequested drops the outstanding challenge.
func (h *UserHandlers) HandleChallengeSkipRequested(ctx context.Context, payload *userevents.ChallengeSkipRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "UserHandlers.HandleChallengeSkipRequested")
	defer span.End()

	if _, err := h.service.SkipChallenge(ctx, payload.UserID, payload.Force); err != nil {
		return h.failure(ctx, payload.ChannelID, payload.UserID, err), nil
	}
	return reply(chat.Announcement{
		ChannelID:   payload.ChannelID,
		Content:     chat.Mention(payload.UserID),
		Mentions:    []string{payload.UserID},
		Description: "Challenge skipped.",
		Color:       chat.ColorActive,
	}), nil
}

func (h *UserHandlers) failure(ctx context.Context, channelID, userID string, err error) []handlerwrapper.Result {
	if !userservice.IsExpected(err) {
		h.logger.ErrorContext(ctx, "User request failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
	return reply(chat.ErrorAnnouncement(channelID, userID, userservice.FailureText(err)))
}

func (h *UserHandlers) challengeAnnouncement(channelID, userID string, c matchdomain.Challenge, text string, color int) chat.Announcement {
	url := h.service.ProblemURL(c.Problem)
	return chat.Announcement{
		ChannelID:   channelID,
		Content:     chat.Mention(userID),
		Mentions:    []string{userID},
		Title:       fmt.Sprintf("%s. %s", c.Problem.Key(), c.Problem.Name),
		URL:         url,
		Description: text,
		Fields:      []chat.Field{{Name: "Rating", Value: fmt.Sprintf("%d", c.Rating), Inline: true}},
		Color:       color,
	}
}

func reply(ann chat.Announcement) []handlerwrapper.Result {
	return []handlerwrapper.Result{chat.PostResult(ann)}
}
