package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"patrolfund/internal/events"
)

// Store implements events.Store on a transactional outbox table. Rows are
// written here first and drained to downstream sinks by the outbox worker, so
// an event survives a sink outage.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL event store. The caller owns the *sql.DB; the pgx
// stdlib driver is registered in cmd/server.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema creates the outbox table if missing. Invoked at startup and by
// integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS chain_events_outbox (
    id          TEXT PRIMARY KEY,
    event_type  TEXT NOT NULL,
    height      BIGINT NOT NULL,
    payload     JSONB NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("ensure chain_events_outbox schema: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chain_events_outbox (id, event_type, height, payload, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.ID, string(event.Type), int64(event.Height), payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", event.ID, err)
	}
	return nil
}

// ListRecent returns the newest events, oldest first, for admin inspection.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]events.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM (
		     SELECT payload, recorded_at FROM chain_events_outbox
		     ORDER BY recorded_at DESC LIMIT $1
		 ) recent ORDER BY recorded_at ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event payload: %w", err)
		}
		var event events.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("decode event payload: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
