package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"claimflow/internal/claim/models"
	"claimflow/pkg/platform/sentinel"
	"claimflow/pkg/platform/tx"
)

// PostgresStore persists claims in PostgreSQL. Every method joins the
// transaction carried on the context, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const claimColumns = `id, nino, dwp_household_identifier, hmrc_household_identifier, eligibility_status,
	claim_status, claim_status_timestamp, card_account_id, card_status, card_status_timestamp,
	claimant, version, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, claim *models.Claim) error {
	claimant, err := json.Marshal(claim.Claimant)
	if err != nil {
		return fmt.Errorf("marshal claimant: %w", err)
	}
	claim.Version = 1
	_, err = tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		claim.ID, claim.Nino, claim.DWPHouseholdIdentifier, claim.HMRCHouseholdIdentifier,
		string(claim.EligibilityStatus), string(claim.ClaimStatus), claim.ClaimStatusTimestamp,
		claim.CardAccountID, string(claim.CardStatus), claim.CardStatusTimestamp,
		claimant, claim.Version, claim.CreatedAt, claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert claim: %w", translate(err))
	}
	return nil
}

// Update writes the claim if nobody else has updated it since it was loaded.
func (s *PostgresStore) Update(ctx context.Context, claim *models.Claim) error {
	res, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE claims SET
			dwp_household_identifier = $3,
			hmrc_household_identifier = $4,
			eligibility_status = $5,
			claim_status = $6,
			claim_status_timestamp = $7,
			card_account_id = $8,
			card_status = $9,
			card_status_timestamp = $10,
			updated_at = $11,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		claim.ID, claim.Version, claim.DWPHouseholdIdentifier, claim.HMRCHouseholdIdentifier,
		string(claim.EligibilityStatus), string(claim.ClaimStatus), claim.ClaimStatusTimestamp,
		claim.CardAccountID, string(claim.CardStatus), claim.CardStatusTimestamp, claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update claim: %w", translate(err))
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update claim %s at version %d: %w", claim.ID, claim.Version, sentinel.ErrConflict)
	}
	claim.Version++
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	row := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = $1`, id)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("claim %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	return claim, nil
}

func (s *PostgresStore) FindLiveClaimsWithNino(ctx context.Context, nino string) ([]*models.Claim, error) {
	return s.query(ctx, "find live claims by nino",
		`SELECT `+claimColumns+` FROM claims
		WHERE nino = $1 AND claim_status = ANY($2)
		ORDER BY created_at`,
		nino, pq.Array(liveStatuses()))
}

func (s *PostgresStore) LiveClaimExistsForHousehold(ctx context.Context, dwpHousehold, hmrcHousehold string) (bool, error) {
	if dwpHousehold == "" && hmrcHousehold == "" {
		return false, nil
	}
	var exists bool
	err := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM claims
			WHERE claim_status = ANY($3)
			  AND (($1 <> '' AND dwp_household_identifier = $1)
			    OR ($2 <> '' AND hmrc_household_identifier = $2))
		)`,
		dwpHousehold, hmrcHousehold, pq.Array(liveStatuses()),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check live household claims: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FindByCardStatus(ctx context.Context, status models.CardStatus) ([]*models.Claim, error) {
	return s.query(ctx, "find claims by card status",
		`SELECT `+claimColumns+` FROM claims WHERE card_status = $1 ORDER BY card_status_timestamp`,
		string(status))
}

// FindByCardStatusChangedBefore returns claims whose card entered status
// before the cutoff.
func (s *PostgresStore) FindByCardStatusChangedBefore(ctx context.Context, status models.CardStatus, cutoff time.Time) ([]*models.Claim, error) {
	return s.query(ctx, "find claims by card status",
		`SELECT `+claimColumns+` FROM claims
		WHERE card_status = $1 AND card_status_timestamp <= $2
		ORDER BY card_status_timestamp`,
		string(status), cutoff)
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Claim, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var claims []*models.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.Claim, error) {
	var (
		claim          models.Claim
		eligibility    string
		claimStatus    string
		cardStatus     string
		cardStatusTime sql.NullTime
		claimant       []byte
	)
	if err := row.Scan(
		&claim.ID, &claim.Nino, &claim.DWPHouseholdIdentifier, &claim.HMRCHouseholdIdentifier, &eligibility,
		&claimStatus, &claim.ClaimStatusTimestamp, &claim.CardAccountID, &cardStatus, &cardStatusTime,
		&claimant, &claim.Version, &claim.CreatedAt, &claim.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(claimant, &claim.Claimant); err != nil {
		return nil, fmt.Errorf("unmarshal claimant: %w", err)
	}
	claim.EligibilityStatus = models.EligibilityStatus(eligibility)
	claim.ClaimStatus = models.ClaimStatus(claimStatus)
	claim.CardStatus = models.CardStatus(cardStatus)
	if cardStatusTime.Valid {
		t := cardStatusTime.Time
		claim.CardStatusTimestamp = &t
	}
	return &claim, nil
}

func liveStatuses() []string {
	out := make([]string, 0, len(models.LiveClaimStatuses))
	for _, s := range models.LiveClaimStatuses {
		out = append(out, string(s))
	}
	return out
}
