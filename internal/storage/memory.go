package storage

import (
	"context"
	"sync"

	"github.com/botforge/botforge/internal/models"
)

// MemoryStore keeps sessions and transcripts in process memory. It is
// the degraded fallback when no durable backend is available; state
// lives only as long as the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]string
	messages map[string][]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]string),
		messages: make(map[string][]models.Message),
	}
}

func (s *MemoryStore) Session(ctx context.Context, botID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[botID], nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, botID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[botID] = sessionID
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[sessionID]
	out := make([]models.Message, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return nil
}

func (s *MemoryStore) Replace(ctx context.Context, sessionID, id string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if updated, ok := replaceByID(s.messages[sessionID], id, msg); ok {
		s.messages[sessionID] = updated
	}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, sessionID)
	return nil
}

func (s *MemoryStore) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
