// Package presence tracks which users currently hold a live connection.
// The registry is purely in-memory: a restart empties it and every user is
// offline until they reconnect.
package presence

import (
	"sort"
	"sync"
)

// Registry maps a user id to the id of their single live connection. A new
// connection from the same user overwrites the previous entry (last write
// wins, no multi-device fan-out).
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string // userID -> connID
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]string)}
}

func (r *Registry) Register(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = connID
}

// Unregister removes the mapping for userID, but only if it still points at
// connID. A reconnect that already overwrote the entry is left untouched when
// the stale connection finally tears down.
func (r *Registry) Unregister(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[userID] == connID {
		delete(r.conns, userID)
	}
}

// Lookup returns the live connection id for userID. Absence is a normal
// outcome, never an error.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.conns[userID]
	return connID, ok
}

// Online returns the sorted set of user ids with a live connection.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}
