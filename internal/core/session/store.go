package session

import (
	"sync"
)

// Session is the ephemeral per-login state: who is logged in and the text of
// the most recently uploaded document. Nothing here is persisted; a process
// restart or logout discards it, which is the intended behavior.
type Session struct {
	UserID       int64
	Username     string
	DocumentText string
	DocumentName string
}

// Store keeps sessions in-process, keyed by the session ID carried in the
// auth token. Safe for concurrent use; no two sessions share state.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session under the given ID.
func (s *Store) Create(id string, userID int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &Session{UserID: userID, Username: username}
}

// Get returns a copy of the session, or false if it does not exist
// (never created, or destroyed by logout).
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// SetDocument replaces the session's held document text.
func (s *Store) SetDocument(id, name, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.DocumentName = name
	sess.DocumentText = text
	return true
}

// Delete destroys a session, dropping the document text with it.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
