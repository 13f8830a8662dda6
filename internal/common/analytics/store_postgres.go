// internal/common/analytics/store_postgres.go
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"scheme-finder/internal/models"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS analytics_events (
	id            UUID PRIMARY KEY,
	action        TEXT NOT NULL,
	actor_id      TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	error_message TEXT,
	metadata      JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at    TIMESTAMPTZ NOT NULL
)`

const insertEvent = `INSERT INTO analytics_events (id, action, actor_id, outcome, error_message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create analytics_events: %w", err)
	}
	return nil
}

func (p *PostgresStore) Append(ctx context.Context, event models.AnalyticsEvent) error {
	meta, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	var errMsg sql.NullString
	if event.ErrorMessage != "" {
		errMsg = sql.NullString{String: event.ErrorMessage, Valid: true}
	}

	_, err = p.db.ExecContext(ctx, insertEvent,
		event.ID, event.Action, event.ActorID, event.Outcome, errMsg, meta, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}
