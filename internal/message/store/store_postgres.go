package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"claimflow/internal/message/models"
	"claimflow/pkg/platform/sentinel"
	"claimflow/pkg/platform/tx"
	"claimflow/pkg/requestcontext"
)

// PostgresStore is the durable message queue. Enqueue and Delete join the
// transaction carried on the context so follow-on work commits together with
// the processor's changes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Enqueue(ctx context.Context, t models.MessageType, payload any) (uuid.UUID, error) {
	msg, err := models.NewMessage(t, payload, requestcontext.Now(ctx))
	if err != nil {
		return uuid.Nil, err
	}
	_, err = tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO messages (id, message_type, payload, created_timestamp)
		VALUES ($1, $2, $3, $4)`,
		msg.ID, string(msg.Type), []byte(msg.Payload), msg.CreatedTimestamp,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert %s message: %w", t, err)
	}
	return msg.ID, nil
}

// FindPending returns every queued message of the type, oldest first.
func (s *PostgresStore) FindPending(ctx context.Context, t models.MessageType) ([]*models.Message, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, message_type, payload, created_timestamp
		FROM messages
		WHERE message_type = $1
		ORDER BY created_timestamp, id`, string(t))
	if err != nil {
		return nil, fmt.Errorf("query %s messages: %w", t, err)
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var (
			msg     models.Message
			msgType string
			payload []byte
		)
		if err := rows.Scan(&msg.ID, &msgType, &payload, &msg.CreatedTimestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Type = models.MessageType(msgType)
		msg.Payload = payload
		out = append(out, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("message %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

// CountByType reports how many messages of each type are queued.
func (s *PostgresStore) CountByType(ctx context.Context) (map[models.MessageType]int, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx,
		`SELECT message_type, COUNT(*) FROM messages GROUP BY message_type`)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.MessageType]int)
	for rows.Next() {
		var (
			msgType string
			n       int
		)
		if err := rows.Scan(&msgType, &n); err != nil {
			return nil, fmt.Errorf("scan message count: %w", err)
		}
		counts[models.MessageType(msgType)] = n
	}
	return counts, rows.Err()
}
