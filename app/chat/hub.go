package chat

import (
	"log/slog"
	"sync"
)

// Filter decides whether a subscriber receives a message.
type Filter func(Message) bool

// Subscription is a filtered view of the inbound chat stream.
type Subscription struct {
	id     int
	filter Filter
	ch     chan Message
	hub    *Hub
	once   sync.Once
}

// C delivers matching messages. It is closed by Unsubscribe.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Unsubscribe stops delivery and closes C. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs, s.id)
		close(s.ch)
	})
}

// Hub fans inbound chat messages out to filtered subscribers.
type Hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]*Subscription
	buffer int
	logger *slog.Logger
}

// NewHub creates a hub whose subscribers buffer up to buffer messages.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{subs: make(map[int]*Subscription), buffer: buffer, logger: logger}
}

// Subscribe registers filter. A nil filter receives everything.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{
		id:     h.next,
		filter: filter,
		ch:     make(chan Message, h.buffer),
		hub:    h,
	}
	h.next++
	h.subs[sub.id] = sub
	return sub
}

// Publish delivers msg to every subscriber whose filter accepts it. A full
// subscriber drops the message.
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if sub.filter != nil && !sub.filter(msg) {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			h.logger.Warn("Dropping chat message for slow subscriber",
				slog.Int("subscription", sub.id),
				slog.String("message_id", msg.ID),
				slog.String("author_id", msg.AuthorID),
			)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
