package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/botforge/botforge/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore is the shared-database backend for deployments where
// transcripts must outlive a single machine.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(config DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStore) Session(ctx context.Context, botID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id FROM sessions WHERE bot_id = $1`, botID).Scan(&sessionID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error loading session: %v", err)
	}
	return sessionID, nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, botID, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (bot_id, session_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (bot_id) DO UPDATE SET session_id = $2, updated_at = now()`,
		botID, sessionID)
	if err != nil {
		return fmt.Errorf("error saving session: %v", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, text, is_ai, ts, is_loading
		FROM messages
		WHERE session_id = $1
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error loading messages: %v", err)
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.FromBot, &m.Timestamp, &m.Pending); err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading messages: %v", err)
	}
	return msgs, nil
}

func (s *PostgresStore) Append(ctx context.Context, sessionID string, msg models.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (session_id, message_id, text, is_ai, ts, is_loading)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sessionID, msg.ID, msg.Text, msg.FromBot, msg.Timestamp, msg.Pending)
	if err != nil {
		return fmt.Errorf("error appending message: %v", err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, sessionID, id string, msg models.Message) error {
	// Position (seq) is untouched, so the entry keeps its place in
	// the transcript. Zero matched rows is the stale-id no-op.
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages
		SET message_id = $3, text = $4, is_ai = $5, ts = $6, is_loading = $7
		WHERE session_id = $1 AND message_id = $2`,
		sessionID, id, msg.ID, msg.Text, msg.FromBot, msg.Timestamp, msg.Pending)
	if err != nil {
		return fmt.Errorf("error replacing message: %v", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("error clearing messages: %v", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
