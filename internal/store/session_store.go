package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

// Custom store errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session with this ID already exists")
)

// SessionStore keeps signed-in sessions on the server side.
type SessionStore interface {
	Create(ctx context.Context, session *domain.UserSession) error
	Get(ctx context.Context, id string) (*domain.UserSession, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// MemorySessionStore is a SessionStore living in process memory.
// Sessions are lost on restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.UserSession
	logger   *slog.Logger
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore(logger *slog.Logger) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.UserSession),
		logger:   logger,
	}
}

func (m *MemorySessionStore) Create(ctx context.Context, session *domain.UserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return ErrSessionExists
	}
	sessionCopy := *session
	m.sessions[session.ID] = &sessionCopy
	m.logger.DebugContext(ctx, "Session stored in memory", slog.String("sessionID", session.ID))
	return nil
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (*domain.UserSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sessionCopy := *session
	return &sessionCopy, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.InfoContext(ctx, "Expired sessions purged from memory", slog.Int64("count", removed))
	}
	return removed, nil
}
