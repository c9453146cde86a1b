package eventbus

import (
	"context"
	"fmt"
	"log/slog"
)

// StreamConfig names a JetStream stream and the subjects it captures.
type StreamConfig struct {
	Name     string
	Subjects []string
}

// DefaultStreams covers every subject the service publishes or consumes.
var DefaultStreams = []StreamConfig{
	{Name: "chat", Subjects: []string{"chat.>"}},
	{Name: "match", Subjects: []string{"match.>"}},
	{Name: "user", Subjects: []string{"user.>"}},
	{Name: "problem", Subjects: []string{"problem.>"}},
}

// InitializeStreams creates the necessary streams in JetStream during application startup.
func InitializeStreams(ctx context.Context, bus EventBus, streams []StreamConfig, logger *slog.Logger) error {
	for _, stream := range streams {
		if err := bus.CreateStream(ctx, stream.Name, stream.Subjects...); err != nil {
			logger.ErrorContext(ctx, "Failed to create JetStream stream",
				slog.String("stream", stream.Name),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to initialize stream %s: %w", stream.Name, err)
		}
		logger.InfoContext(ctx, "JetStream stream ready", slog.String("stream", stream.Name))
	}
	return nil
}
