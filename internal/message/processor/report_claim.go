package processor

import (
	"context"
	"errors"
	"fmt"

	"claimflow/internal/message/models"
)

// ReportClaim publishes a claim analytics event.
type ReportClaim struct {
	claims   ClaimStore
	reporter Reporter
}

func NewReportClaim(claims ClaimStore, reporter Reporter) (*ReportClaim, error) {
	if claims == nil || reporter == nil {
		return nil, errors.New("report claim: claim store and reporter are required")
	}
	return &ReportClaim{claims: claims, reporter: reporter}, nil
}

func (p *ReportClaim) MessageType() models.MessageType {
	return models.MessageTypeReportClaim
}

func (p *ReportClaim) Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
	payload, err := models.DecodePayload[models.ReportClaimPayload](msg)
	if err != nil {
		return "", err
	}
	claim, err := p.claims.FindByID(ctx, payload.ClaimID)
	if err != nil {
		return "", fmt.Errorf("load claim %s: %w", payload.ClaimID, err)
	}
	if err := p.reporter.ReportClaim(ctx, claim, payload.ClaimAction, payload.UpdatedClaimantFields, payload.Timestamp); err != nil {
		return "", err
	}
	return models.MessageStatusCompleted, nil
}
