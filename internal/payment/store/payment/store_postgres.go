package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"claimflow/internal/payment/models"
	"claimflow/pkg/platform/tx"
)

// PostgresStore records payments made to cards. Payments are append-only.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Payment) error {
	_, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO payments (id, claim_id, payment_cycle_id, card_account_id, payment_amount_in_pence,
			payment_timestamp, request_reference, response_reference, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.ClaimID, p.PaymentCycleID, p.CardAccountID, p.PaymentAmountInPence,
		p.PaymentTimestamp, p.RequestReference, p.ResponseReference, string(p.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByPaymentCycle(ctx context.Context, cycleID uuid.UUID) ([]*models.Payment, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, claim_id, payment_cycle_id, card_account_id, payment_amount_in_pence,
			payment_timestamp, request_reference, response_reference, payment_status
		FROM payments
		WHERE payment_cycle_id = $1
		ORDER BY payment_timestamp`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("find payments by cycle: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		var (
			p      models.Payment
			status string
		)
		if err := rows.Scan(&p.ID, &p.ClaimID, &p.PaymentCycleID, &p.CardAccountID, &p.PaymentAmountInPence,
			&p.PaymentTimestamp, &p.RequestReference, &p.ResponseReference, &status); err != nil {
			return nil, fmt.Errorf("find payments by cycle: scan: %w", err)
		}
		p.PaymentStatus = models.PaymentStatus(status)
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find payments by cycle: %w", err)
	}
	return payments, nil
}
