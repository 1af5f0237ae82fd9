package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS turn_messages (
	id          BIGSERIAL PRIMARY KEY,
	session_id  TEXT        NOT NULL,
	role        TEXT        NOT NULL,
	content     TEXT        NOT NULL,
	language    TEXT        NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS turn_messages_session_idx ON turn_messages (session_id, id);
`

// Postgres is a Store backed by a single turn_messages table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the history table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to create history schema: %w", err)
	}
	return nil
}

func (s *Postgres) Record(ctx context.Context, sessionID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range msgs {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		batch.Queue(
			`INSERT INTO turn_messages (session_id, role, content, language, created_at) VALUES ($1, $2, $3, $4, $5)`,
			sessionID, string(m.Role), m.Content, m.Language, ts,
		)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("unable to record messages: %w", err)
	}
	return nil
}

func (s *Postgres) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	query := `SELECT role, content, language, created_at FROM (
		SELECT id, role, content, language, created_at FROM turn_messages
		WHERE session_id = $1 ORDER BY id DESC LIMIT $2
	) recent ORDER BY id ASC`

	var rowLimit any
	if limit > 0 {
		rowLimit = limit
	}

	rows, err := s.pool.Query(ctx, query, sessionID, rowLimit)
	if err != nil {
		return nil, fmt.Errorf("unable to query history: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Message, error) {
		var m Message
		var role string
		if err := row.Scan(&role, &m.Content, &m.Language, &m.Timestamp); err != nil {
			return Message{}, err
		}
		m.Role = Role(role)
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read history: %w", err)
	}
	return messages, nil
}

func (s *Postgres) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM turn_messages WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("unable to clear history: %w", err)
	}
	return nil
}
