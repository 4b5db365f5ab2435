// Package realtime fans out video events to connected clients.
//
// Clients join rooms named video:<id>. A broadcast reaches only the members
// of its room, is never stored, and is never retried: a client that misses
// an event re-fetches state over HTTP. Events for one room reach each member
// in the order Broadcast was called.
package realtime

import (
	"strconv"
	"sync"

	"github.com/emilythestrangee/vidtube/backend/internal/observability"
)

// Event names sent to clients.
const (
	EventLikeUpdated    = "like:updated"
	EventDislikeUpdated = "dislike:updated"
	EventCommentNew     = "comment:new"
	EventCommentUpdated = "comment:updated"
	EventCommentDeleted = "comment:deleted"
)

// Event names received from clients.
const (
	EventVideoJoin  = "video:join"
	EventVideoLeave = "video:leave"
)

// Event is the frame written to a client.
type Event struct {
	Name string `json:"event"`
	Room string `json:"room"`
	Data any    `json:"data"`
}

// Conn is one client connection as the hub sees it.
type Conn interface {
	ID() string
	// Enqueue hands ev to the connection without blocking and reports
	// whether it was accepted.
	Enqueue(ev Event) bool
}

// VideoRoom names the room that carries a video's events.
func VideoRoom(videoID int) string {
	return "video:" + strconv.Itoa(videoID)
}

// Hub is the in-process room registry.
type Hub struct {
	mu      sync.Mutex
	conns   map[string]Conn
	rooms   map[string]map[string]struct{} // room -> conn ids
	joined  map[string]map[string]struct{} // conn id -> rooms
	metrics *observability.Metrics
}

func NewHub(metrics *observability.Metrics) *Hub {
	return &Hub{
		conns:   make(map[string]Conn),
		rooms:   make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
		metrics: metrics,
	}
}

// Register makes a connection eligible to join rooms.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c.ID()] = c
	h.joined[c.ID()] = make(map[string]struct{})
	h.metrics.SetConnections(len(h.conns))
	h.mu.Unlock()
}

// Unregister removes a connection from every room it joined. After it
// returns the hub never calls Enqueue on that connection again.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.joined[connID] {
		h.removeLocked(room, connID)
	}
	delete(h.joined, connID)
	delete(h.conns, connID)
	h.metrics.SetConnections(len(h.conns))
	h.metrics.SetRooms(len(h.rooms))
}

// Join adds a registered connection to room. It reports false for an
// unknown connection.
func (h *Hub) Join(room, connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.joined[connID]
	if !ok {
		return false
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room] = members
	}
	members[connID] = struct{}{}
	rooms[room] = struct{}{}
	h.metrics.SetRooms(len(h.rooms))
	return true
}

func (h *Hub) Leave(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(room, connID)
	if rooms, ok := h.joined[connID]; ok {
		delete(rooms, room)
	}
	h.metrics.SetRooms(len(h.rooms))
}

func (h *Hub) removeLocked(room, connID string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast enqueues the event on every member of room and returns how many
// accepted it. Members whose buffer is full miss the event.
func (h *Hub) Broadcast(room, event string, payload any) int {
	ev := Event{Name: event, Room: room, Data: payload}

	// The lock is held while enqueueing so concurrent broadcasts to the
	// same room reach every member in one order.
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for connID := range h.rooms[room] {
		c, ok := h.conns[connID]
		if !ok {
			continue
		}
		if c.Enqueue(ev) {
			delivered++
		} else {
			h.metrics.EventDropped()
		}
	}
	h.metrics.Broadcasted(event)
	return delivered
}

// Members returns the number of connections in room.
func (h *Hub) Members(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
