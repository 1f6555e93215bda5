package cycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/entitlement"
	"claimflow/internal/payment/models"
	"claimflow/pkg/platform/sentinel"
	"claimflow/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists payment cycles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var cycleColumnNames = []string{
	"id", "claim_id", "cycle_start_date", "cycle_end_date", "payment_cycle_status", "eligibility_status",
	"voucher_entitlement", "children_dob", "expected_delivery_date", "total_vouchers",
	"total_entitlement_amount_in_pence", "card_balance_in_pence", "card_balance_timestamp",
	"version", "created_at", "updated_at",
}

var cycleColumns = strings.Join(cycleColumnNames, ", ")

func qualifiedColumns(alias string) string {
	cols := make([]string, len(cycleColumnNames))
	for i, c := range cycleColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func (s *PostgresStore) Create(ctx context.Context, cycle *models.PaymentCycle) error {
	voucherEntitlement, childrenDob, err := marshalJSONColumns(cycle)
	if err != nil {
		return err
	}
	cycle.Version = 1
	_, err = tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO payment_cycles (`+cycleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		cycle.ID, cycle.ClaimID, cycle.CycleStartDate, cycle.CycleEndDate,
		string(cycle.PaymentCycleStatus), string(cycle.EligibilityStatus),
		voucherEntitlement, childrenDob, cycle.ExpectedDeliveryDate, cycle.TotalVouchers,
		cycle.TotalEntitlementAmountInPence, cycle.CardBalanceInPence, cycle.CardBalanceTimestamp,
		cycle.Version, cycle.CreatedAt, cycle.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("insert payment cycle for claim %s starting %s: %w",
				cycle.ClaimID, cycle.CycleStartDate.Format(time.DateOnly), sentinel.ErrConflict)
		}
		return fmt.Errorf("insert payment cycle: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, cycle *models.PaymentCycle) error {
	voucherEntitlement, childrenDob, err := marshalJSONColumns(cycle)
	if err != nil {
		return err
	}
	res, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE payment_cycles SET
			payment_cycle_status = $3,
			eligibility_status = $4,
			voucher_entitlement = $5,
			children_dob = $6,
			expected_delivery_date = $7,
			total_vouchers = $8,
			total_entitlement_amount_in_pence = $9,
			card_balance_in_pence = $10,
			card_balance_timestamp = $11,
			updated_at = $12,
			cycle_end_date = $13,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		cycle.ID, cycle.Version, string(cycle.PaymentCycleStatus), string(cycle.EligibilityStatus),
		voucherEntitlement, childrenDob, cycle.ExpectedDeliveryDate, cycle.TotalVouchers,
		cycle.TotalEntitlementAmountInPence, cycle.CardBalanceInPence, cycle.CardBalanceTimestamp,
		cycle.UpdatedAt, cycle.CycleEndDate,
	)
	if err != nil {
		return fmt.Errorf("update payment cycle: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment cycle rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update payment cycle %s at version %d: %w", cycle.ID, cycle.Version, sentinel.ErrConflict)
	}
	cycle.Version++
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentCycle, error) {
	row := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+cycleColumns+` FROM payment_cycles WHERE id = $1`, id)
	cycle, err := scanCycle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment cycle %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find payment cycle: %w", err)
	}
	return cycle, nil
}

// FindCurrentForClaim returns the claim's cycle with the latest start date.
func (s *PostgresStore) FindCurrentForClaim(ctx context.Context, claimID uuid.UUID) (*models.PaymentCycle, error) {
	row := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+cycleColumns+` FROM payment_cycles
		WHERE claim_id = $1
		ORDER BY cycle_start_date DESC
		LIMIT 1`, claimID)
	cycle, err := scanCycle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("current payment cycle for claim %s: %w", claimID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find current payment cycle: %w", err)
	}
	return cycle, nil
}

func (s *PostgresStore) FindByClaim(ctx context.Context, claimID uuid.UUID) ([]*models.PaymentCycle, error) {
	return s.query(ctx, "find payment cycles by claim",
		`SELECT `+cycleColumns+` FROM payment_cycles WHERE claim_id = $1 ORDER BY cycle_start_date`,
		claimID)
}

// FindCyclesDueForRollover returns the latest cycle of every ACTIVE or
// PENDING_EXPIRY claim when that cycle ended before today.
func (s *PostgresStore) FindCyclesDueForRollover(ctx context.Context, today time.Time) ([]*models.PaymentCycle, error) {
	return s.query(ctx, "find payment cycles due for rollover",
		`SELECT `+qualifiedColumns("pc")+`
		FROM payment_cycles pc
		JOIN claims c ON c.id = pc.claim_id
		WHERE pc.cycle_end_date < $1
		  AND c.claim_status = ANY($2)
		  AND NOT EXISTS (
			SELECT 1 FROM payment_cycles later
			WHERE later.claim_id = pc.claim_id AND later.cycle_start_date > pc.cycle_start_date
		  )
		ORDER BY pc.cycle_end_date, pc.claim_id`,
		today, pq.Array([]string{string(claimmodels.ClaimStatusActive), string(claimmodels.ClaimStatusPendingExpiry)}))
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.PaymentCycle, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var cycles []*models.PaymentCycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		cycles = append(cycles, cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cycles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (*models.PaymentCycle, error) {
	var (
		cycle              models.PaymentCycle
		status             string
		eligibility        string
		voucherEntitlement []byte
		childrenDob        []byte
		dueDate            sql.NullTime
		balance            sql.NullInt64
		balanceTimestamp   sql.NullTime
	)
	if err := row.Scan(
		&cycle.ID, &cycle.ClaimID, &cycle.CycleStartDate, &cycle.CycleEndDate, &status, &eligibility,
		&voucherEntitlement, &childrenDob, &dueDate, &cycle.TotalVouchers,
		&cycle.TotalEntitlementAmountInPence, &balance, &balanceTimestamp,
		&cycle.Version, &cycle.CreatedAt, &cycle.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cycle.PaymentCycleStatus = models.PaymentCycleStatus(status)
	cycle.EligibilityStatus = claimmodels.EligibilityStatus(eligibility)
	cycle.CycleStartDate = asDate(cycle.CycleStartDate)
	cycle.CycleEndDate = asDate(cycle.CycleEndDate)
	if len(voucherEntitlement) > 0 {
		var e entitlement.PaymentCycleVoucherEntitlement
		if err := json.Unmarshal(voucherEntitlement, &e); err != nil {
			return nil, fmt.Errorf("unmarshal voucher entitlement: %w", err)
		}
		cycle.VoucherEntitlement = &e
	}
	if err := json.Unmarshal(childrenDob, &cycle.ChildrenDob); err != nil {
		return nil, fmt.Errorf("unmarshal children dob: %w", err)
	}
	if dueDate.Valid {
		d := asDate(dueDate.Time)
		cycle.ExpectedDeliveryDate = &d
	}
	if balance.Valid {
		b := int(balance.Int64)
		cycle.CardBalanceInPence = &b
	}
	if balanceTimestamp.Valid {
		t := balanceTimestamp.Time
		cycle.CardBalanceTimestamp = &t
	}
	return &cycle, nil
}

func marshalJSONColumns(cycle *models.PaymentCycle) (voucherEntitlement, childrenDob []byte, err error) {
	if cycle.VoucherEntitlement != nil {
		voucherEntitlement, err = json.Marshal(cycle.VoucherEntitlement)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal voucher entitlement: %w", err)
		}
	}
	dobs := cycle.ChildrenDob
	if dobs == nil {
		dobs = []time.Time{}
	}
	childrenDob, err = json.Marshal(dobs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal children dob: %w", err)
	}
	return voucherEntitlement, childrenDob, nil
}

// asDate drops the zone the driver attaches to DATE columns.
func asDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
