package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/eventbus"
	chatevents "github.com/Black-And-White-Club/lockout-bot/app/events/chat"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextPayload(t *testing.T, ch <-chan *message.Message) *chatevents.AnnouncementPayloadV1 {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		var p chatevents.AnnouncementPayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &p))
		return &p
	case <-time.After(time.Second):
		t.Fatal("no announcement published")
		return nil
	}
}

func TestEventAnnouncer_PostThenEdit(t *testing.T) {
	ctx := context.Background()
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	posts, err := pubsub.Subscribe(ctx, chatevents.AnnouncementPostV1)
	require.NoError(t, err)
	edits, err := pubsub.Subscribe(ctx, chatevents.AnnouncementEditV1)
	require.NoError(t, err)

	announcer := NewEventAnnouncer(pubsub, nil)

	id, err := announcer.Post(ctx, Announcement{
		ChannelID: "chan",
		Title:     "Lockout",
		Color:     ColorActive,
		Fields:    []Field{{Name: "Standings", Value: "1. tourist"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	posted := nextPayload(t, posts)
	assert.Equal(t, string(id), posted.AnnouncementID)
	require.NotNil(t, posted.Embed)
	assert.Equal(t, "Lockout", posted.Embed.Title)
	assert.Equal(t, ColorActive, posted.Embed.Color)
	assert.Equal(t, "Standings", posted.Embed.Fields[0].Name)

	require.NoError(t, announcer.Edit(ctx, id, Announcement{ChannelID: "chan", Content: "done"}))
	edited := nextPayload(t, edits)
	assert.Equal(t, string(id), edited.AnnouncementID)
	assert.Equal(t, "done", edited.Content)
	assert.Nil(t, edited.Embed)
}

func TestNewMessageTopicMetadata(t *testing.T) {
	msg, err := eventbus.NewMessage(chatevents.AnnouncementPostV1, ToPayload("x", ErrorAnnouncement("c", "7", "boom")), "")
	require.NoError(t, err)
	assert.Equal(t, chatevents.AnnouncementPostV1, msg.Metadata.Get(eventbus.TopicMetadataKey))
	assert.Equal(t, msg.UUID, msg.Metadata.Get(eventbus.CorrelationIDKey))
}
