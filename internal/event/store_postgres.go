package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	id "pinksync/pkg/domain"
)

// PostgresStore archives accepted events in PostgreSQL. It is an additive
// durability collaborator: the broker's correctness contract holds with the
// in-memory store alone, and this implementation exists for deployments that
// need the log to survive restarts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed event store.
// The accessibility_events table must exist; see EnsureSchema.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the events table when it does not exist. The serial
// column, not the caller-supplied timestamp, defines acceptance order.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accessibility_events (
			seq        BIGSERIAL PRIMARY KEY,
			event_id   TEXT NOT NULL UNIQUE,
			app_id     TEXT NOT NULL,
			user_id    TEXT NOT NULL DEFAULT '',
			intent     TEXT NOT NULL,
			ts         TIMESTAMPTZ NOT NULL,
			metadata   JSONB NOT NULL DEFAULT '{}',
			level_hint TEXT NOT NULL DEFAULT '',
			signature  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS accessibility_events_app_idx
			ON accessibility_events (app_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("ensure events schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, ev Event) error {
	meta, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}
	if ev.Metadata == nil {
		meta = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accessibility_events
			(event_id, app_id, user_id, intent, ts, metadata, level_hint, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.EventID, ev.AppID.String(), ev.UserID.String(), ev.Intent.String(),
		ev.Timestamp.UTC(), meta, ev.LevelHint.String(), ev.Signature,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByApp(ctx context.Context, appID id.AppID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, app_id, user_id, intent, ts, metadata, level_hint, signature
		FROM accessibility_events
		WHERE app_id = $1
		ORDER BY seq`,
		appID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev        Event
			appIDStr  string
			userIDStr string
			intentStr string
			ts        time.Time
			meta      []byte
			levelHint string
		)
		if err := rows.Scan(&ev.EventID, &appIDStr, &userIDStr, &intentStr, &ts, &meta, &levelHint, &ev.Signature); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.AppID = id.AppID(appIDStr)
		ev.UserID = id.UserID(userIDStr)
		ev.Intent = id.Intent(intentStr)
		ev.Timestamp = ts
		ev.LevelHint = id.ComplianceLevel(levelHint)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	if out == nil {
		out = []Event{}
	}
	return out, nil
}
