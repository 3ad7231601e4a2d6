package storage

import (
	"context"

	"github.com/botforge/botforge/internal/models"
)

// Store persists session identity and conversation transcripts. Both
// are opaque to the platform backend and never synced to it. Every
// mutation is write-through: it reaches durable storage before the
// call returns.
type Store interface {
	// Session returns the persisted session id for a bot scope, or ""
	// when none has been minted yet.
	Session(ctx context.Context, botID string) (string, error)
	SaveSession(ctx context.Context, botID, sessionID string) error

	// Load returns the transcript in append order. A missing or
	// malformed record loads as an empty transcript, never an error.
	Load(ctx context.Context, sessionID string) ([]models.Message, error)
	Append(ctx context.Context, sessionID string, msg models.Message) error
	// Replace substitutes the entry with the given id in place. When
	// the id is absent the call is a silent no-op: an in-flight turn
	// from a stale session must not resurrect a cleared transcript.
	Replace(ctx context.Context, sessionID, id string, msg models.Message) error
	Clear(ctx context.Context, sessionID string) error

	Close() error
}

// replaceByID returns a copy of msgs with the entry matching id
// substituted, preserving position. The second result reports whether
// a substitution happened.
func replaceByID(msgs []models.Message, id string, msg models.Message) ([]models.Message, bool) {
	for i, m := range msgs {
		if m.ID == id {
			out := make([]models.Message, len(msgs))
			copy(out, msgs)
			out[i] = msg
			return out, true
		}
	}
	return msgs, false
}
