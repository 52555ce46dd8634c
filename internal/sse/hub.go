package sse

import (
	"context"
	"sync"

	"notify_relay/internal/model"
)

// Client receives finished notification events. An empty Outcome subscribes
// to every event.
type Client struct {
	Outcome string
	Ch      chan model.Event
}

func (c *Client) wants(event model.Event) bool {
	return c.Outcome == "" || c.Outcome == event.Outcome
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan model.Event
	clients    map[*Client]struct{}
	mu         sync.RWMutex
	stopped    chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan model.Event, 64),
		clients:    make(map[*Client]struct{}),
		stopped:    make(chan struct{}),
	}
}

// Register and Unregister return immediately once Run has exited.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Broadcast queues event for delivery and reports whether it was accepted.
// It never blocks the notifying request.
func (h *Hub) Broadcast(event model.Event) bool {
	select {
	case h.broadcast <- event:
		return true
	default:
		return false
	}
}

// Done is closed once Run has exited, so subscribers can stop streaming.
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

func (h *Hub) fanOut(event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.wants(event) {
			continue
		}
		select {
		case client.Ch <- event:
		default:
			// Drop if the client is too slow.
		}
	}
}
