package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	// CorrelationIDKey links every message produced while handling one request.
	CorrelationIDKey = "correlation_id"
	// DynamicTopic is the router publish topic for handlers whose results carry
	// their own TopicMetadataKey.
	DynamicTopic = "lockout.dynamic"
)

// NewMessage marshals payload as JSON into a message addressed to topic.
func NewMessage(topic string, payload any, correlationID string) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(TopicMetadataKey, topic)
	if correlationID == "" {
		correlationID = msg.UUID
	}
	msg.Metadata.Set(CorrelationIDKey, correlationID)
	return msg, nil
}
