package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/botforge/botforge/internal/models"
)

// FileStore is the default backend: one JSON file per session record
// and one per transcript under a data directory. Every mutation
// rewrites the whole file, which keeps a refresh-survivable copy on
// disk at all times at message-volume cost that does not matter here.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) sessionPath(botID string) string {
	return filepath.Join(s.dir, "sess_id_"+sanitizeKey(botID)+".json")
}

func (s *FileStore) messagesPath(sessionID string) string {
	return filepath.Join(s.dir, "chat_messages_"+sanitizeKey(sessionID)+".json")
}

// sanitizeKey makes a key filesystem-safe. The mapping is injective:
// every byte outside the safe set, and '_' itself, is hex-escaped, so
// two distinct keys can never land on the same file.
func sanitizeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}

func (s *FileStore) Session(ctx context.Context, botID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.sessionPath(botID))
	if err != nil {
		return "", nil
	}

	var record struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return "", nil
	}
	return record.SessionID, nil
}

func (s *FileStore) SaveSession(ctx context.Context, botID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := struct {
		SessionID string `json:"session_id"`
	}{SessionID: sessionID}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := os.WriteFile(s.sessionPath(botID), data, 0o644); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, sessionID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(sessionID), nil
}

// load reads a transcript without locking. A missing or malformed
// file is an empty transcript.
func (s *FileStore) load(sessionID string) []models.Message {
	data, err := os.ReadFile(s.messagesPath(sessionID))
	if err != nil {
		return []models.Message{}
	}

	var msgs []models.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return []models.Message{}
	}
	return msgs
}

func (s *FileStore) flush(sessionID string, msgs []models.Message) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(s.messagesPath(sessionID), data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func (s *FileStore) Append(ctx context.Context, sessionID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flush(sessionID, append(s.load(sessionID), msg))
}

func (s *FileStore) Replace(ctx context.Context, sessionID, id string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, ok := replaceByID(s.load(sessionID), id, msg)
	if !ok {
		return nil
	}
	return s.flush(sessionID, updated)
}

func (s *FileStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.messagesPath(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
