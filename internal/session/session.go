// Package session derives and persists per-conversation identity.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/storage"
)

// Manager mints and persists one session id per bot scope. The scope
// key is opaque: surfaces that need finer scoping (one session per
// Telegram chat, say) compose their own key.
//
// Storage failures degrade to an in-process map so a conversation can
// still proceed for the lifetime of the manager; they never surface
// to the caller.
type Manager struct {
	store  storage.Store
	logger *zap.Logger

	mu       sync.Mutex
	fallback map[string]string
}

func NewManager(store storage.Store, logger *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		logger:   logger,
		fallback: make(map[string]string),
	}
}

// GetOrCreate returns the session bound to botID, minting and
// persisting a fresh one on first use.
func (m *Manager) GetOrCreate(ctx context.Context, botID string) models.Session {
	id, err := m.store.Session(ctx, botID)
	if err != nil {
		m.logger.Warn("Session lookup failed, using in-memory identity",
			zap.Error(err),
			zap.String("bot_id", botID))
		return models.Session{BotID: botID, ID: m.fallbackSession(botID)}
	}
	if id != "" {
		return models.Session{BotID: botID, ID: id}
	}

	// A clean lookup that finds nothing may still have an in-memory
	// identity from an earlier failed save; minting again here would
	// hand out a fresh session on every call.
	m.mu.Lock()
	if fid, ok := m.fallback[botID]; ok {
		m.mu.Unlock()
		return models.Session{BotID: botID, ID: fid}
	}
	m.mu.Unlock()

	id = uuid.NewString()
	if err := m.store.SaveSession(ctx, botID, id); err != nil {
		m.logger.Warn("Failed to persist session, keeping it in memory",
			zap.Error(err),
			zap.String("bot_id", botID))
		m.rememberFallback(botID, id)
	}
	return models.Session{BotID: botID, ID: id}
}

// Reset mints a replacement session for botID and clears the old
// session's transcript. The old transcript stays addressable under
// its own key; it is simply no longer the active one.
func (m *Manager) Reset(ctx context.Context, botID string) models.Session {
	oldID, err := m.store.Session(ctx, botID)
	if err != nil || oldID == "" {
		m.mu.Lock()
		if fid, ok := m.fallback[botID]; ok {
			oldID = fid
		}
		m.mu.Unlock()
	}

	id := uuid.NewString()
	if err := m.store.SaveSession(ctx, botID, id); err != nil {
		m.logger.Warn("Failed to persist reset session, keeping it in memory",
			zap.Error(err),
			zap.String("bot_id", botID))
		m.rememberFallback(botID, id)
	}

	if oldID != "" {
		if err := m.store.Clear(ctx, oldID); err != nil {
			m.logger.Warn("Failed to clear previous session transcript",
				zap.Error(err),
				zap.String("session_id", oldID))
		}
	}
	return models.Session{BotID: botID, ID: id}
}

func (m *Manager) fallbackSession(botID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.fallback[botID]; ok {
		return id
	}
	id := uuid.NewString()
	m.fallback[botID] = id
	return id
}

func (m *Manager) rememberFallback(botID, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fallback[botID] = id
}
