// Package events provides the in-process notification bus that connects the
// data services to interested listeners, such as the websocket hub.
package events

import (
	"sync"
	"time"
)

// Event describes a change to a user's data. Listeners use it to decide
// whether to refresh their view; it carries no payload beyond the identity
// of what changed.
type Event struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	UserID string    `json:"-"`
	At     time.Time `json:"at"`
}

const (
	EntityDestinations = "destinations"
	EntityShipments    = "shipments"
	EntitySettings     = "settings"

	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
)

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// that stops draining its channel misses events instead of stalling the
// writer path.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. The cancel function closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
