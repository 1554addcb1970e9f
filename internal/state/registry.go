package state

import (
	"sync"

	"github.com/yuchou/tripledger/internal/storage"
)

// Registry hands out one Manager per user so all of a user's requests see
// the same session snapshot.
type Registry struct {
	store storage.Store

	mu       sync.Mutex
	sessions map[string]*Manager
}

// NewRegistry creates an empty session registry over the given store.
func NewRegistry(store storage.Store) *Registry {
	return &Registry{
		store:    store,
		sessions: make(map[string]*Manager),
	}
}

// Session returns the user's manager, creating one on first use. A fresh
// manager starts empty; callers resync it before reading.
func (r *Registry) Session(userID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.sessions[userID]; ok {
		return m
	}
	m := NewManager(r.store, userID)
	r.sessions[userID] = m
	return m
}
