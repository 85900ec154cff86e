package ws

import "sync"

// Sink receives outbound envelopes for one live connection. Delivery is
// best-effort: implementations drop frames rather than block the hub.
type Sink interface {
	Send(env Envelope)
}

// Hub tracks live connections and the group rooms they have joined. Room
// membership is client-driven (a connection joins a room while viewing a
// group) and independent of durable group membership.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Sink            // connID -> sink
	rooms map[string]map[string]bool // groupID -> set of connIDs
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Sink),
		rooms: make(map[string]map[string]bool),
	}
}

func (h *Hub) Add(connID string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = sink
}

// Remove drops the connection and clears it out of every room it joined.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
	for groupID, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, groupID)
		}
	}
}

func (h *Hub) JoinRoom(groupID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; !ok {
		return
	}
	if _, ok := h.rooms[groupID]; !ok {
		h.rooms[groupID] = make(map[string]bool)
	}
	h.rooms[groupID][connID] = true
}

func (h *Hub) LeaveRoom(groupID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[groupID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, groupID)
		}
	}
}

// SendTo pushes an envelope to a single connection, if it is still live.
func (h *Hub) SendTo(connID string, env Envelope) {
	h.mu.RLock()
	sink, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok {
		sink.Send(env)
	}
}

// BroadcastAll pushes an envelope to every live connection.
func (h *Hub) BroadcastAll(env Envelope) {
	h.mu.RLock()
	sinks := make([]Sink, 0, len(h.conns))
	for _, sink := range h.conns {
		sinks = append(sinks, sink)
	}
	h.mu.RUnlock()
	for _, sink := range sinks {
		sink.Send(env)
	}
}

// BroadcastRoom pushes an envelope to every connection that joined the room.
func (h *Hub) BroadcastRoom(groupID string, env Envelope) {
	h.mu.RLock()
	var sinks []Sink
	for connID := range h.rooms[groupID] {
		if sink, ok := h.conns[connID]; ok {
			sinks = append(sinks, sink)
		}
	}
	h.mu.RUnlock()
	for _, sink := range sinks {
		sink.Send(env)
	}
}

// RoomSize reports how many connections are in a room.
func (h *Hub) RoomSize(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[groupID])
}
