package chat

import "time"

// Message is an inbound chat message.
type Message struct {
	ID        string
	AuthorID  string
	ChannelID string
	Content   string
	Timestamp time.Time
}
