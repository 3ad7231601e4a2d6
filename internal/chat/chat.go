// Package chat drives one conversation turn: optimistic append,
// remote query, resolve or fall back.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/models"
	"github.com/botforge/botforge/internal/platform"
	"github.com/botforge/botforge/internal/storage"
)

// FailureText is the fixed assistant entry shown when a query fails.
// There is no automatic retry; the user resends manually.
const FailureText = "❌ Failed to get a response. Please try again."

// ErrEmptyMessage rejects blank input before any side effect.
var ErrEmptyMessage = errors.New("message text is empty")

// Querier is the slice of the platform client a turn needs.
type Querier interface {
	Query(ctx context.Context, req platform.QueryRequest) (string, error)
}

type Orchestrator struct {
	store   storage.Store
	querier Querier
	logger  *zap.Logger
}

func NewOrchestrator(store storage.Store, querier Querier, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		querier: querier,
		logger:  logger,
	}
}

// Send runs one message turn. The user message and a paired pending
// placeholder are appended together before any network I/O, so a
// renderer never sees one without the other. The placeholder is then
// replaced with the answer, or with FailureText when the query fails;
// network errors never escape to the caller.
//
// Concurrent turns are safe: each owns a unique placeholder id, and
// replacing into a session cleared mid-flight is a silent no-op.
func (o *Orchestrator) Send(ctx context.Context, sess models.Session, kbID, userID, text string) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, ErrEmptyMessage
	}

	now := time.Now()
	userMsg := models.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: now,
	}
	pending := models.Message{
		ID:        uuid.NewString(),
		FromBot:   true,
		Timestamp: now,
		Pending:   true,
	}

	if err := o.store.Append(ctx, sess.ID, userMsg); err != nil {
		o.logger.Warn("Failed to persist user message",
			zap.Error(err),
			zap.String("session_id", sess.ID))
	}
	if err := o.store.Append(ctx, sess.ID, pending); err != nil {
		o.logger.Warn("Failed to persist pending placeholder",
			zap.Error(err),
			zap.String("session_id", sess.ID))
	}

	answer, err := o.querier.Query(ctx, platform.QueryRequest{
		UserID:    userID,
		BotID:     sess.BotID,
		KBID:      kbID,
		SessionID: sess.ID,
		InputText: text,
	})

	resolved := models.Message{
		ID:        uuid.NewString(),
		FromBot:   true,
		Timestamp: time.Now(),
	}
	if err != nil {
		o.logger.Error("Query failed",
			zap.Error(err),
			zap.String("bot_id", sess.BotID),
			zap.String("session_id", sess.ID))
		resolved.Text = FailureText
	} else {
		resolved.Text = answer
	}

	if err := o.store.Replace(ctx, sess.ID, pending.ID, resolved); err != nil {
		o.logger.Warn("Failed to resolve pending placeholder",
			zap.Error(err),
			zap.String("session_id", sess.ID))
	}
	return resolved, nil
}
