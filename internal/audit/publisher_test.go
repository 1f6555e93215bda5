package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimmodels "claimflow/internal/claim/models"
	paymentmodels "claimflow/internal/payment/models"
	"claimflow/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error { return errors.New("sink down") }

func TestPublisher_StampsEventsWithRequestTime(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	store := NewInMemoryStore()
	p := NewPublisher(store, nil)

	claim := claimmodels.NewClaim(claimmodels.Claimant{Nino: "QQ123456C"}, claimmodels.ClaimStatusNew,
		claimmodels.EligibilityStatusEligible, "", "", now)
	p.AuditNewClaim(ctx, claim)
	p.AuditNewCard(ctx, claim.ID, "card-1")

	events := store.ListByClaim(claim.ID)
	require.Len(t, events, 2)
	assert.Equal(t, EventNewClaim, events[0].Type)
	assert.Equal(t, "NEW", events[0].Fields["claim_status"])
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, EventNewCard, events[1].Type)
	assert.Equal(t, "card-1", events[1].Fields["card_account_id"])
}

func TestPublisher_PaymentEvents(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, nil)
	claimID := uuid.New()
	cycle := &paymentmodels.PaymentCycle{ID: uuid.New(), ClaimID: claimID, TotalEntitlementAmountInPence: 1240}
	payment := &paymentmodels.Payment{ID: uuid.New(), PaymentAmountInPence: 1000, ResponseReference: "dep-1"}

	p.AuditMakePayment(context.Background(), cycle, payment)
	p.AuditBalanceTooHighForPayment(context.Background(), claimID, 1240, 9920)

	events := store.ListByClaim(claimID)
	require.Len(t, events, 2)
	assert.Equal(t, 1000, events[0].Fields["payment_amount_in_pence"])
	assert.Equal(t, "dep-1", events[0].Fields["reference"])
	assert.Equal(t, EventBalanceTooHighForPayment, events[1].Type)
	assert.Equal(t, 9920, events[1].Fields["balance_on_card"])
}

func TestPublisher_SinkFailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	p := NewPublisher(failingStore{}, logger)

	p.AuditNewCard(context.Background(), uuid.New(), "card-1")

	assert.Contains(t, buf.String(), "failed to append audit event")
	assert.Contains(t, buf.String(), "sink down")
}

func TestLogStore_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogStore(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, s.Append(context.Background(), Event{Type: EventNewCard, ClaimID: uuid.Nil}))

	assert.Contains(t, buf.String(), `"event_type":"NEW_CARD"`)
}
