package session

import (
	"sync"

	"docchat/internal/helper"
)

// Store maps session IDs (cookie values) to live sessions. Sessions are
// created on first interaction and live until the process exits; there is
// no cross-session sharing of state.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session with the given ID, if it exists.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Create makes a new uninitialized session with a fresh ID.
func (st *Store) Create() (*Session, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	s := &Session{ID: id, state: StateUninitialized}
	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s, nil
}

// GetOrCreate returns the session for id, creating a new one when id is
// empty or unknown.
func (st *Store) GetOrCreate(id string) (*Session, error) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, nil
		}
	}
	return st.Create()
}

// Delete removes a session. Destroying state on session end is the only
// way history is ever dropped.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
