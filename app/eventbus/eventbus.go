package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// TopicMetadataKey overrides the publish topic of a message produced by a handler.
const TopicMetadataKey = "topic"

// EventBus publishes to and subscribes from NATS JetStream.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// CreateStream ensures streamName exists and covers every subject.
	CreateStream(ctx context.Context, streamName string, subjects ...string) error
}

// eventBus implements EventBus over watermill-nats.
type eventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewEventBus creates and returns an EventBus with a connection to NATS JetStream.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}

	natsConn, err := nc.Connect(natsURL, natsOptions...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.ErrorContext(ctx, "Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       natsOptions,
			Marshaler:         marshaler,
			SubjectCalculator: nats.DefaultSubjectCalculator,
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				TrackMsgId:    true,
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:               natsURL,
			NatsOptions:       natsOptions,
			Unmarshaler:       marshaler,
			SubjectCalculator: nats.DefaultSubjectCalculator,
			AckWaitTimeout:    30 * time.Second,
			CloseTimeout:      30 * time.Second,
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				SubscribeOptions: []nc.SubOpt{
					nc.DeliverNew(),
					nc.AckExplicit(),
				},
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		_ = publisher.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}, nil
}

// Publish publishes messages to topic. A message carrying TopicMetadataKey is
// routed to that topic instead.
func (eb *eventBus) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}

		target := topic
		if override := msg.Metadata.Get(TopicMetadataKey); override != "" {
			target = override
		}
		if target == "" || target == DynamicTopic {
			return fmt.Errorf("message %s has no publish topic", msg.UUID)
		}

		eb.logger.Debug("Publishing message",
			slog.String("topic", target),
			slog.String("message_id", msg.UUID),
			slog.String("correlation_id", msg.Metadata.Get(CorrelationIDKey)),
		)

		if err := eb.publisher.Publish(target, msg); err != nil {
			eb.logger.Error("Failed to publish message",
				slog.String("topic", target),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish message to %s: %w", target, err)
		}
	}
	return nil
}

// Subscribe returns the message channel for topic.
func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.InfoContext(ctx, "Subscribing to subject", slog.String("subject", topic))

	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}
	return messages, nil
}

// CreateStream creates streamName or extends it with any missing subjects.
func (eb *eventBus) CreateStream(ctx context.Context, streamName string, subjects ...string) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[streamName] {
		return nil
	}

	stream, err := eb.js.Stream(ctx, streamName)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		if _, err := eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      streamName,
			Subjects:  subjects,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    24 * time.Hour,
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}
		eb.logger.InfoContext(ctx, "Stream created", slog.String("stream_name", streamName), slog.Any("subjects", subjects))
	case err != nil:
		return fmt.Errorf("failed to check if stream exists: %w", err)
	default:
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}

		missing := missingSubjects(info.Config.Subjects, subjects)
		if len(missing) > 0 {
			info.Config.Subjects = append(info.Config.Subjects, missing...)
			if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream with new subjects: %w", err)
			}
			eb.logger.InfoContext(ctx, "Stream updated with new subjects", slog.String("stream_name", streamName), slog.Any("subjects", missing))
		}
	}

	eb.createdStreams[streamName] = true
	return nil
}

func missingSubjects(existing, wanted []string) []string {
	have := make(map[string]bool, len(existing))
	for _, s := range existing {
		have[s] = true
	}
	var out []string
	for _, s := range wanted {
		if !have[s] {
			out = append(out, s)
		}
	}
	return out
}

// Close closes all NATS and Watermill resources.
func (eb *eventBus) Close() error {
	var errs []error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}
