package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/MrFantastico007/DeadDrop/internal/metrics"
)

// Event is the wire envelope for server->client pushes.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Hub is the live room registry: roomCode -> set of connected clients.
// It owns membership and fan-out only; message data never lives here.
// Rooms appear when the first client joins and vanish when the last
// one leaves.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{}), log: log}
}

// Join adds c to the room's member set. Joining a room the client is
// already in is a no-op, so a client never receives duplicate deliveries.
func (h *Hub) Join(c *Client, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.room != "" && c.room != roomCode {
		h.removeLocked(c)
	}
	c.room = roomCode
	if _, ok := h.rooms[roomCode]; !ok {
		h.rooms[roomCode] = make(map[*Client]struct{})
	}
	h.rooms[roomCode][c] = struct{}{}
}

// Leave removes c from its room, if any. Safe to call repeatedly and for
// clients that never joined.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if c.room == "" {
		return
	}
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// Broadcast hands the event to every current member of the room, at most
// once per member. A member whose send buffer is full has the frame
// dropped; it rebuilds state from a history fetch on reconnect.
func (h *Hub) Broadcast(roomCode, event string, payload interface{}) {
	ev := Event{Name: event, Data: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomCode] {
		if c.enqueue(ev) {
			metrics.BroadcastsDelivered.Inc()
		} else if h.log != nil {
			h.log.Warnw("dropping event for slow client", "room", roomCode, "conn", c.id, "event", event)
		}
	}
}

// Members reports the current member count of a room.
func (h *Hub) Members(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}
