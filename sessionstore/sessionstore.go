// Package sessionstore persists per-session conversation history.
package sessionstore

import (
	"context"
	"sync"

	"github.com/aqua777/ayurveda-companion/schema"
)

// SessionStore stores conversation history keyed by session ID. A missing
// session reads as an empty history, not an error.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (schema.History, error)
	Set(ctx context.Context, sessionID string, history schema.History) error
	Delete(ctx context.Context, sessionID string) error
}

// SimpleSessionStore keeps session history in memory. It is safe for
// concurrent use.
type SimpleSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]schema.History
}

// NewSimpleSessionStore creates an empty SimpleSessionStore.
func NewSimpleSessionStore() *SimpleSessionStore {
	return &SimpleSessionStore{
		sessions: make(map[string]schema.History),
	}
}

// Get returns the history for a session, empty when the session is new.
func (s *SimpleSessionStore) Get(_ context.Context, sessionID string) (schema.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID].Clone(), nil
}

// Set replaces the history for a session.
func (s *SimpleSessionStore) Set(_ context.Context, sessionID string, history schema.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = history.Clone()
	return nil
}

// Delete removes a session.
func (s *SimpleSessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Ensure SimpleSessionStore implements the interface.
var _ SessionStore = (*SimpleSessionStore)(nil)
