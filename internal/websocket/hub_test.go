package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTestHub(t *testing.T) (*Hub, chan events.Event) {
	t.Helper()

	hub := NewHub()
	eventCh := make(chan events.Event, 8)
	go hub.Run(eventCh)
	t.Cleanup(func() {
		close(eventCh)
	})
	return hub, eventCh
}

func waitOnline(t *testing.T, hub *Hub, userID string) {
	t.Helper()

	deadline := time.After(time.Second)
	for !hub.IsUserOnline(userID) {
		select {
		case <-deadline:
			t.Fatal("client never registered")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestHubRelaysEventToUserSessions(t *testing.T) {
	hub, eventCh := runTestHub(t)

	client := &Client{Hub: hub, UserID: "u-1", Send: make(chan []byte, 4)}
	hub.Register(client)
	waitOnline(t, hub, "u-1")

	eventCh <- events.Event{
		Entity: events.EntityShipments,
		Action: events.ActionCreated,
		UserID: "u-1",
	}

	select {
	case raw := <-client.Send:
		var event events.Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, events.EntityShipments, event.Entity)
		assert.Equal(t, events.ActionCreated, event.Action)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestHubDoesNotRelayToOtherUsers(t *testing.T) {
	hub, eventCh := runTestHub(t)

	client := &Client{Hub: hub, UserID: "u-1", Send: make(chan []byte, 4)}
	hub.Register(client)
	waitOnline(t, hub, "u-1")

	eventCh <- events.Event{
		Entity: events.EntityDestinations,
		Action: events.ActionUpdated,
		UserID: "someone-else",
	}

	select {
	case <-client.Send:
		t.Fatal("event leaked across users")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub, _ := runTestHub(t)

	client := &Client{Hub: hub, UserID: "u-1", Send: make(chan []byte, 4)}
	hub.Register(client)
	waitOnline(t, hub, "u-1")

	hub.Unregister(client)

	deadline := time.After(time.Second)
	for hub.IsUserOnline("u-1") {
		select {
		case <-deadline:
			t.Fatal("client never unregistered")
		case <-time.After(time.Millisecond):
		}
	}

	_, open := <-client.Send
	assert.False(t, open)
}

func TestHubKeepsOtherSessionsOnUnregister(t *testing.T) {
	hub, _ := runTestHub(t)

	first := &Client{Hub: hub, UserID: "u-1", Send: make(chan []byte, 4)}
	second := &Client{Hub: hub, UserID: "u-1", Send: make(chan []byte, 4)}
	hub.Register(first)
	hub.Register(second)
	waitOnline(t, hub, "u-1")

	hub.Unregister(first)

	// The second tab stays connected.
	time.Sleep(20 * time.Millisecond)
	assert.True(t, hub.IsUserOnline("u-1"))
}
