package matchhandlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	chatevents "github.com/Black-And-White-Club/lockout-bot/app/events/chat"
	matchevents "github.com/Black-And-White-Club/lockout-bot/app/events/match"
	matchservice "github.com/Black-And-White-Club/lockout-bot/app/modules/match/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// MatchHandlers implements the Handlers interface.
type MatchHandlers struct {
	service matchservice.Service
	sink    MessageSink
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewMatchHandlers creates a new MatchHandlers instance.
func NewMatchHandlers(
	service matchservice.Service,
	sink MessageSink,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &MatchHandlers{
		service: service,
		sink:    sink,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleDuelRequested starts a duel negotiation in the background. The
// negotiation outlives the message, so the service announces its own outcome.
func (h *MatchHandlers) HandleDuelRequested(ctx context.Context, payload *matchevents.DuelRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "MatchHandlers.HandleDuelRequested")
	defer span.End()

	req := matchservice.DuelRequest{
		ChannelID:   payload.ChannelID,
		InitiatorID: payload.InitiatorID,
		InviteeIDs:  payload.InviteeIDs,
		RatingHint:  payload.RatingHint,
	}
	err := h.service.Go(ctx, func(ctx context.Context) {
		if _, err := h.service.StartDuel(ctx, req); err != nil {
			h.logger.InfoContext(ctx, "Duel not started",
				slog.String("initiator_id", req.InitiatorID),
				slog.String("reason", err.Error()),
			)
		}
	})
	if err != nil {
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.InitiatorID, matchservice.FailureText(err))), nil
	}
	return nil, nil
}

// HandleLockoutRequested starts a lockout negotiation in the background.
func (h *MatchHandlers) HandleLockoutRequested(ctx context.Context, payload *matchevents.LockoutRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "MatchHandlers.HandleLockoutRequested")
	defer span.End()

	req := matchservice.LockoutRequest{
		ChannelID:    payload.ChannelID,
		InitiatorID:  payload.InitiatorID,
		InviteeIDs:   payload.InviteeIDs,
		ProblemCount: payload.ProblemCount,
		Duration:     time.Duration(payload.DurationMinutes) * time.Minute,
		RatingHint:   payload.RatingHint,
		Increment:    payload.Increment,
	}
	err := h.service.Go(ctx, func(ctx context.Context) {
		if _, err := h.service.StartLockout(ctx, req); err != nil {
			h.logger.InfoContext(ctx, "Lockout not started",
				slog.String("initiator_id", req.InitiatorID),
				slog.String("reason", err.Error()),
			)
		}
	})
	if err != nil {
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.InitiatorID, matchservice.FailureText(err))), nil
	}
	return nil, nil
}

// HandleTriggerRequested routes a control token to the caller's match.
func (h *MatchHandlers) HandleTriggerRequested(ctx context.Context, payload *matchevents.TriggerRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "MatchHandlers.HandleTriggerRequested")
	defer span.End()

	token, ok := chat.ParseTokenName(payload.Token)
	if !ok {
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.UserID, "Use finish, giveup or update.")), nil
	}

	err := h.service.Trigger(ctx, matchservice.TriggerRequest{
		ChannelID: payload.ChannelID,
		UserID:    payload.UserID,
		Token:     token,
	})
	if err != nil {
		if !isExpected(err) {
			h.logger.ErrorContext(ctx, "Trigger failed",
				slog.String("user_id", payload.UserID),
				slog.String("token", token.String()),
				slog.Any("error", err),
			)
		}
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.UserID, matchservice.FailureText(err))), nil
	}
	return nil, nil
}

// HandleStatusRequested shows the caller's active match.
func (h *MatchHandlers) HandleStatusRequested(ctx context.Context, payload *matchevents.StatusRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "MatchHandlers.HandleStatusRequested")
	defer span.End()

	ann, err := h.service.Status(ctx, payload.ChannelID, payload.UserID)
	if err != nil {
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.UserID, matchservice.FailureText(err))), nil
	}
	return reply(ann), nil
}

// HandleChatMessage feeds a raw chat message to negotiations and observers.
func (h *MatchHandlers) HandleChatMessage(ctx context.Context, payload *chatevents.MessageReceivedPayloadV1) ([]handlerwrapper.Result, error) {
	_, span := h.tracer.Start(ctx, "MatchHandlers.HandleChatMessage")
	defer span.End()

	h.sink.Publish(chat.Message{
		ID:        payload.MessageID,
		AuthorID:  payload.AuthorID,
		ChannelID: payload.ChannelID,
		Content:   payload.Content,
		Timestamp: payload.Timestamp,
	})
	return nil, nil
}

func reply(ann chat.Announcement) []handlerwrapper.Result {
	return []handlerwrapper.Result{chat.PostResult(ann)}
}

func isExpected(err error) bool {
	return errors.Is(err, matchservice.ErrNoActiveMatch) ||
		errors.Is(err, matchservice.ErrTokenNotAccepted) ||
		errors.Is(err, problemdomain.ErrJudgeUnavailable)
}
