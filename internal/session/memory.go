package session

import (
	"context"
	"sync"
	"time"

	"github.com/pingme/pingme/internal/model"
)

type memoryEntry struct {
	session   model.Session
	expiresAt time.Time
}

// MemoryStore is an in-process session store for tests and local
// development. Sessions expire lazily on access.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemory creates an in-memory session store.
func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create persists a new session and returns it.
func (s *MemoryStore) Create(ctx context.Context, user model.User) (*model.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	sess := model.Session{
		ID:         id,
		IsLoggedIn: true,
		User:       user,
		CreatedAt:  s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{session: sess, expiresAt: s.now().Add(s.ttl)}

	return &sess, nil
}

// Get retrieves a session by ID, expiring it if its TTL has passed.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}

	sess := entry.session
	return &sess, nil
}

// Touch extends the session's TTL.
func (s *MemoryStore) Touch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return ErrNotFound
	}

	entry.expiresAt = s.now().Add(s.ttl)
	s.sessions[id] = entry
	return nil
}

// Destroy removes a session.
func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
