package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"claimflow/pkg/platform/tx"
)

// PostgresStore appends events to the audit_events table. Appends join the
// transaction carried on the context, so an event is only kept when the
// change it describes commits.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	fields := event.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal audit fields: %w", err)
	}
	_, err = tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (id, event_type, claim_id, timestamp, fields)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), string(event.Type), event.ClaimID, event.Timestamp, payload,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByClaim returns the events recorded for a claim, oldest first.
func (s *PostgresStore) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]Event, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, `
		SELECT event_type, claim_id, timestamp, fields
		FROM audit_events
		WHERE claim_id = $1
		ORDER BY timestamp, id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			t      string
			fields []byte
		)
		if err := rows.Scan(&t, &e.ClaimID, &e.Timestamp, &fields); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Type = EventType(t)
		if err := json.Unmarshal(fields, &e.Fields); err != nil {
			return nil, fmt.Errorf("decode audit fields: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
