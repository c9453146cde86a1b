// Package chatevents defines the chat gateway subjects and payloads.
package chatevents

import "time"

const (
	// MessageReceivedV1 carries every chat message seen by the gateway.
	MessageReceivedV1 = "chat.message.received.v1"
	// AnnouncementPostV1 asks the gateway to post a new announcement.
	AnnouncementPostV1 = "chat.announcement.post.v1"
	// AnnouncementEditV1 asks the gateway to replace a posted announcement.
	AnnouncementEditV1 = "chat.announcement.edit.v1"
)

// MessageReceivedPayloadV1 is a raw chat message.
type MessageReceivedPayloadV1 struct {
	MessageID string    `json:"message_id"`
	AuthorID  string    `json:"author_id"`
	ChannelID string    `json:"channel_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// EmbedField is one key/value row of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedV1 is the structured part of an announcement.
type EmbedV1 struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      string       `json:"footer,omitempty"`
}

// AnnouncementPayloadV1 is posted or edited by the gateway. AnnouncementID is
// assigned by the engine on post and reused for edits.
type AnnouncementPayloadV1 struct {
	AnnouncementID string   `json:"announcement_id"`
	ChannelID      string   `json:"channel_id"`
	Content        string   `json:"content,omitempty"`
	Mentions       []string `json:"mentions,omitempty"`
	Embed          *EmbedV1 `json:"embed,omitempty"`
}
