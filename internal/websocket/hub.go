// Package websocket pushes data-change notifications to connected browsers
// so open tabs refresh without polling.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/MauroRinelli/Solship/pkg/logger"
)

// Client is one websocket session. A user may hold several at once, one
// per open tab.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID string
	Send   chan []byte
}

// Hub tracks connected clients per user and relays bus events to them.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
	}
}

// Run processes registrations and relays bus events until the event
// channel closes. Intended to run in its own goroutine.
func (h *Hub) Run(eventCh <-chan events.Event) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()

			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":  client.UserID,
				"sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case event, ok := <-eventCh:
			if !ok {
				return
			}
			h.relay(event)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientList, ok := h.clients[client.UserID]
	if !ok {
		return
	}

	newList := make([]*Client, 0, len(clientList))
	for _, c := range clientList {
		if c != client {
			newList = append(newList, c)
		}
	}
	if len(newList) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = newList
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":  client.UserID,
		"sessions": len(newList),
	})
}

// relay sends the event to every session of the user it concerns.
func (h *Hub) relay(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", err, nil)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[event.UserID] {
		select {
		case client.Send <- data:
		default:
			// Send buffer full, disconnect the laggard asynchronously.
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": event.UserID,
			})
		}
	}
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether the user has at least one open session.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
