package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	chatevents "github.com/Black-And-White-Club/lockout-bot/app/events/chat"
	"github.com/Black-And-White-Club/lockout-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Embed colours.
const (
	ColorActive   = 0x1ABC9C
	ColorFinished = 0xF1C40F
	ColorError    = 0xE74C3C
	ColorInvite   = 0x3498DB
)

// AnnouncementID identifies a posted announcement so it can be edited.
type AnnouncementID string

// Field is one key/value row of an announcement.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Announcement is an outbound chat message.
type Announcement struct {
	ChannelID   string
	Content     string
	Mentions    []string
	Title       string
	Description string
	URL         string
	Color       int
	Fields      []Field
	Footer      string
}

// Announcer posts and edits announcements.
type Announcer interface {
	Post(ctx context.Context, a Announcement) (AnnouncementID, error)
	Edit(ctx context.Context, id AnnouncementID, a Announcement) error
}

// EventAnnouncer publishes announcements for the chat gateway.
type EventAnnouncer struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewEventAnnouncer creates an Announcer backed by publisher.
func NewEventAnnouncer(publisher message.Publisher, logger *slog.Logger) *EventAnnouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventAnnouncer{publisher: publisher, logger: logger}
}

// Post publishes a new announcement and returns its id.
func (a *EventAnnouncer) Post(ctx context.Context, ann Announcement) (AnnouncementID, error) {
	id := AnnouncementID(uuid.NewString())
	if err := a.publish(ctx, chatevents.AnnouncementPostV1, id, ann); err != nil {
		return "", err
	}
	return id, nil
}

// Edit replaces the announcement previously posted as id.
func (a *EventAnnouncer) Edit(ctx context.Context, id AnnouncementID, ann Announcement) error {
	if id == "" {
		_, err := a.Post(ctx, ann)
		return err
	}
	return a.publish(ctx, chatevents.AnnouncementEditV1, id, ann)
}

func (a *EventAnnouncer) publish(ctx context.Context, topic string, id AnnouncementID, ann Announcement) error {
	msg, err := eventbus.NewMessage(topic, ToPayload(id, ann), handlerwrapper.CorrelationID(ctx))
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := a.publisher.Publish(topic, msg); err != nil {
		a.logger.ErrorContext(ctx, "Failed to publish announcement",
			slog.String("topic", topic),
			slog.String("announcement_id", string(id)),
			slog.String("channel_id", ann.ChannelID),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to publish announcement: %w", err)
	}
	return nil
}

// ToPayload converts an announcement to its wire form.
func ToPayload(id AnnouncementID, ann Announcement) *chatevents.AnnouncementPayloadV1 {
	payload := &chatevents.AnnouncementPayloadV1{
		AnnouncementID: string(id),
		ChannelID:      ann.ChannelID,
		Content:        ann.Content,
		Mentions:       ann.Mentions,
	}
	if ann.Title == "" && ann.Description == "" && len(ann.Fields) == 0 {
		return payload
	}

	embed := &chatevents.EmbedV1{
		Title:       ann.Title,
		Description: ann.Description,
		URL:         ann.URL,
		Color:       ann.Color,
		Footer:      ann.Footer,
	}
	for _, f := range ann.Fields {
		embed.Fields = append(embed.Fields, chatevents.EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	payload.Embed = embed
	return payload
}

// PostResult turns ann into a handler result that posts it.
func PostResult(ann Announcement) handlerwrapper.Result {
	return handlerwrapper.Result{
		Topic:   chatevents.AnnouncementPostV1,
		Payload: ToPayload(AnnouncementID(uuid.NewString()), ann),
	}
}

// ErrorAnnouncement is a red embed addressed to userID.
func ErrorAnnouncement(channelID, userID, text string) Announcement {
	ann := Announcement{
		ChannelID:   channelID,
		Description: text,
		Color:       ColorError,
	}
	if userID != "" {
		ann.Content = Mention(userID)
		ann.Mentions = []string{userID}
	}
	return ann
}
