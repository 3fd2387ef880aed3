package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(Event{Entity: EntityShipments, Action: ActionCreated, UserID: "u1"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case event := <-ch:
			assert.Equal(t, EntityShipments, event.Entity)
			assert.Equal(t, ActionCreated, event.Action)
			assert.False(t, event.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("expected event was not delivered")
		}
	}
}

func TestBus_CancelClosesChannel(t *testing.T) {
	bus := NewBus()

	ch, cancel := bus.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic.
	bus.Publish(Event{Entity: EntityDestinations, Action: ActionDeleted})
}

func TestBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()

	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Entity: EntitySettings, Action: ActionUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "publish blocked on a full subscriber channel")
	}
}
