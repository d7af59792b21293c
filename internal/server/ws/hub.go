// Package ws implements the real-time notification channel: a hub of rooms
// keyed by group id, fed by the task service and drained by WebSocket
// clients. Delivery is best-effort; a slow or disconnected client simply
// misses events until it resynchronizes with a full read.
package ws

import (
	"context"
	"sync"

	"github.com/fcastro-dev/taskroom/internal/logging"
)

// Task mutation events broadcast to group subscribers.
const (
	EventTaskAdded   = "taskAdded"
	EventTaskUpdated = "taskUpdated"
	EventTaskDeleted = "taskDeleted"
)

// Envelope is the wire shape of every message, inbound and outbound.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	logger logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: logger.With("module", "ws_hub"),
	}
}

func (h *Hub) join(groupID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[groupID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[groupID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leave(groupID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[groupID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, groupID)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for groupID, room := range h.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, groupID)
		}
	}
}

// Publish sends an event to every subscriber of the group's room. Sends are
// non-blocking: a client whose buffer is full drops the event.
func (h *Hub) Publish(groupID string, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[groupID] {
		select {
		case c.send <- Envelope{Event: event, Data: payload}:
		default:
			h.logger.Warn(context.Background(), "dropping event for slow client",
				"group_id", groupID, "event", event)
		}
	}
}

// SubscriberCount reports how many clients are in the group's room.
func (h *Hub) SubscriberCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[groupID])
}
