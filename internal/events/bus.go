package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// subscriberBuffer is the per-subscriber queue; a full queue drops events.
const subscriberBuffer = 32

// Event is one notification addressed to a single user
type Event struct {
	Type      EventType `json:"type" msgpack:"type"`
	UserID    string    `json:"-" msgpack:"-"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Data      EventData `json:"data" msgpack:"data"`
}

// Publisher is what services depend on to emit events
type Publisher interface {
	Publish(userID string, data EventData)
}

// Bus fans events out to per-user subscribers. Publishing never blocks.
type Bus struct {
	subscribers map[chan Event]string // channel -> user id
	mu          sync.RWMutex
	log         zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[chan Event]string),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe returns a channel receiving every event addressed to userID
func (b *Bus) Subscribe(userID string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	b.subscribers[ch] = userID

	b.log.Debug().
		Str("user_id", userID).
		Int("total_subscribers", len(b.subscribers)).
		Msg("New subscriber added")

	return ch
}

// Unsubscribe removes and closes a subscriber channel
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Publish delivers data to the user's subscribers
func (b *Bus) Publish(userID string, data EventData) {
	if data == nil {
		return
	}
	event := Event{
		Type:      data.EventType(),
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, subscriber := range b.subscribers {
		if subscriber != userID {
			continue
		}
		select {
		case ch <- event:
		default:
			b.log.Warn().
				Str("event_type", string(event.Type)).
				Str("user_id", userID).
				Msg("Event channel full, dropping event")
		}
	}

	b.log.Debug().
		Str("event_type", string(event.Type)).
		Str("user_id", userID).
		Msg("Event published")
}

// SubscriberCount returns the number of open subscriptions
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
