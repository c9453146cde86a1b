// Package handlerwrapper adapts typed event handlers to watermill handler funcs.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

// CtxKeyCorrelationID holds the correlation id of the message being handled.
const CtxKeyCorrelationID ctxKey = "correlation_id"

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// CorrelationID returns the correlation id stored in ctx, if any.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyCorrelationID).(string)
	return id
}

// WrapTransformingTyped decodes the JSON payload into T, runs handler, and
// turns its results into outgoing messages. Undecodable payloads are logged and
// acknowledged so they are not redelivered forever.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := msg.Metadata.Get(eventbus.CorrelationIDKey)
		if correlationID == "" {
			correlationID = msg.UUID
		}

		ctx := context.WithValue(msg.Context(), CtxKeyCorrelationID, correlationID)
		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.id", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.WarnContext(ctx, "Dropping undecodable message",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				slog.String("correlation_id", correlationID),
				slog.Any("error", err),
			)
			span.RecordError(err)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				slog.String("correlation_id", correlationID),
				slog.Any("error", err),
			)
			span.RecordError(err)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := eventbus.NewMessage(r.Topic, r.Payload, correlationID)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			for k, v := range r.Metadata {
				m.Metadata.Set(k, v)
			}
			out = append(out, m)
		}
		return out, nil
	}
}
