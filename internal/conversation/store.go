package conversation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrSessionBusy     = errors.New("session is attached to another connection")
)

// Store keeps live sessions in memory until their token expires.
// Nothing is persisted; a restart drops every session.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*storeEntry
	now      func() time.Time
}

type storeEntry struct {
	manager   *Manager
	expiresAt time.Time
	attached  bool
}

func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*storeEntry), now: time.Now}
}

// Put registers m under id. Expired sessions are swept on every Put.
func (s *Store) Put(id uuid.UUID, m *Manager, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, k)
		}
	}
	s.sessions[id] = &storeEntry{manager: m, expiresAt: expiresAt}
}

// Get returns the live session for id for reading.
func (s *Store) Get(id uuid.UUID) (*Manager, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.liveLocked(id)
	if e == nil {
		return nil, false
	}
	return e.manager, true
}

// Attach hands the session to a single writer. The returned release must be
// called when the writer is done; until then further Attach calls fail with
// ErrSessionBusy.
func (s *Store) Attach(id uuid.UUID) (*Manager, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.liveLocked(id)
	if e == nil {
		return nil, nil, ErrSessionNotFound
	}
	if e.attached {
		return nil, nil, ErrSessionBusy
	}
	e.attached = true
	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			e.attached = false
			s.mu.Unlock()
		})
	}
	return e.manager, release, nil
}

func (s *Store) liveLocked(id uuid.UUID) *storeEntry {
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, id)
		return nil
	}
	return e
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
