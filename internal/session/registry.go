package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds the live sessions of a server. Each session has its own lock,
// so calls on one session run one at a time and in arrival order while
// different sessions proceed independently.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*handle
}

type handle struct {
	mu sync.Mutex
	ed *Editor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*handle)}
}

// Add stores ed under a new id.
func (r *Registry) Add(ed *Editor) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.sessions[id] = &handle{ed: ed}
	r.mu.Unlock()
	return id
}

// Do runs fn with exclusive access to the session.
func (r *Registry) Do(id uuid.UUID, fn func(*Editor) error) error {
	r.mu.Lock()
	h, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.ed)
}

// Remove forgets a session.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
