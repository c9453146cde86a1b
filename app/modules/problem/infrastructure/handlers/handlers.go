package problemhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	problemevents "github.com/Black-And-White-Club/lockout-bot/app/events/problem"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// ProblemHandlers implements the Handlers interface.
type ProblemHandlers struct {
	service problemservice.Service
	users   HandleResolver
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewProblemHandlers creates a new ProblemHandlers instance.
func NewProblemHandlers(
	service problemservice.Service,
	users HandleResolver,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ProblemHandlers{
		service: service,
		users:   users,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandlePracticeRequested recommends one unsolved problem to a registered user.
func (h *ProblemHandlers) HandlePracticeRequested(ctx context.Context, payload *problemevents.PracticeRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ProblemHandlers.HandlePracticeRequested")
	defer span.End()

	handle, ok := h.users.Handle(payload.UserID)
	if !ok {
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.UserID, "Set your handle first.")), nil
	}

	problem, err := h.service.Practice(ctx, handle, payload.Rating, payload.RatingMax)
	if err != nil {
		msg, ferr := failureText(err)
		if ferr != nil {
			h.logger.ErrorContext(ctx, "Practice recommendation failed",
				slog.String("user_id", payload.UserID),
				slog.String("handle", handle),
				slog.Any("error", err),
			)
		}
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.UserID, msg)), nil
	}

	return reply(chat.Announcement{
		ChannelID:   payload.ChannelID,
		Content:     chat.Mention(payload.UserID),
		Mentions:    []string{payload.UserID},
		Title:       fmt.Sprintf("%d%s. %s", problem.ContestID, problem.Index, problem.Name),
		URL:         h.service.ProblemURL(problem),
		Description: fmt.Sprintf("Rating: %d", problem.RatingValue()),
		Color:       chat.ColorActive,
	}), nil
}

// HandleICPCRequested recommends problems drawn from one ICPC-style contest.
func (h *ProblemHandlers) HandleICPCRequested(ctx context.Context, payload *problemevents.ICPCRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ProblemHandlers.HandleICPCRequested")
	defer span.End()

	set, err := h.service.ICPC(ctx, payload.Count)
	if err != nil {
		msg, ferr := failureText(err)
		if ferr != nil {
			h.logger.ErrorContext(ctx, "ICPC recommendation failed",
				slog.String("user_id", payload.UserID),
				slog.Int("count", payload.Count),
				slog.Any("error", err),
			)
		}
		return reply(chat.ErrorAnnouncement(payload.ChannelID, payload.UserID, msg)), nil
	}

	var lines []string
	for _, p := range set.Problems {
		lines = append(lines, fmt.Sprintf("[%s. %s](%s)", p.Index, p.Name, h.service.ProblemURL(p)))
	}

	return reply(chat.Announcement{
		ChannelID:   payload.ChannelID,
		Content:     chat.Mention(payload.UserID),
		Mentions:    []string{payload.UserID},
		Title:       set.Contest.Name,
		Description: strings.Join(lines, "\n"),
		Color:       chat.ColorActive,
	}), nil
}

func reply(ann chat.Announcement) []handlerwrapper.Result {
	return []handlerwrapper.Result{chat.PostResult(ann)}
}

// failureText returns the user-facing text for err, and err itself when it is
// not an expected outcome.
func failureText(err error) (string, error) {
	switch {
	case errors.Is(err, problemdomain.ErrNoCandidates), errors.Is(err, problemdomain.ErrNoCommonProblem):
		return "No unsolved problem matches that request.", nil
	case errors.Is(err, problemservice.ErrInvalidRatingRange):
		return "The maximum rating must not be below the minimum.", nil
	case errors.Is(err, problemservice.ErrInvalidProblemCount):
		return "That number of problems is out of range.", nil
	case errors.Is(err, problemdomain.ErrJudgeUnavailable):
		return "Codeforces is not responding, try again later.", err
	default:
		return "Something went wrong, try again later.", err
	}
}
