package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/message/models"
	paymentmodels "claimflow/internal/payment/models"
	"claimflow/pkg/requestcontext"
)

// RequestNewCard orders a card for a new claim and hands over to
// CompleteNewCard. A claim that already has a card is not sent to the card
// provider again.
type RequestNewCard struct {
	claims   ClaimStore
	card     CardClient
	messages MessageQueue
	logger   *slog.Logger
}

func NewRequestNewCard(claims ClaimStore, card CardClient, messages MessageQueue, logger *slog.Logger) (*RequestNewCard, error) {
	if claims == nil || card == nil || messages == nil {
		return nil, errors.New("request new card: claim store, card client and message queue are required")
	}
	return &RequestNewCard{claims: claims, card: card, messages: messages, logger: orDefault(logger)}, nil
}

func (p *RequestNewCard) MessageType() models.MessageType {
	return models.MessageTypeRequestNewCard
}

func (p *RequestNewCard) Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
	payload, err := models.DecodePayload[models.RequestNewCardPayload](msg)
	if err != nil {
		return "", err
	}
	claim, err := p.claims.FindByID(ctx, payload.ClaimID)
	if err != nil {
		return "", fmt.Errorf("load claim %s: %w", payload.ClaimID, err)
	}

	if claim.HasCard() {
		p.logger.InfoContext(ctx, "claim already has a card",
			slog.String("claim_id", claim.ID.String()))
	} else {
		resp, err := p.card.RequestNewCard(ctx, cardRequest(claim))
		if err != nil {
			return "", fmt.Errorf("request card for claim %s: %w", claim.ID, err)
		}
		if err := claim.AssignCard(resp.CardAccountID, requestcontext.Now(ctx)); err != nil {
			return "", err
		}
		if err := p.claims.Update(ctx, claim); err != nil {
			return "", fmt.Errorf("store card for claim %s: %w", claim.ID, err)
		}
	}

	_, err = p.messages.Enqueue(ctx, models.MessageTypeCompleteNewCard, models.CompleteNewCardPayload{
		ClaimID:                claim.ID,
		CardAccountID:          claim.CardAccountID,
		VoucherEntitlement:     payload.VoucherEntitlement,
		DatesOfBirthOfChildren: payload.DatesOfBirthOfChildren,
	})
	if err != nil {
		return "", fmt.Errorf("queue card completion: %w", err)
	}
	return models.MessageStatusCompleted, nil
}

func cardRequest(claim *claimmodels.Claim) paymentmodels.CardRequest {
	c := claim.Claimant
	return paymentmodels.CardRequest{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		DateOfBirth:  c.DateOfBirth.Format(time.DateOnly),
		Email:        c.EmailAddress,
		Mobile:       c.PhoneNumber,
		AddressLine1: c.Address.AddressLine1,
		AddressLine2: c.Address.AddressLine2,
		TownOrCity:   c.Address.TownOrCity,
		County:       c.Address.County,
		Postcode:     c.Address.Postcode,
		ClaimID:      claim.ID.String(),
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
