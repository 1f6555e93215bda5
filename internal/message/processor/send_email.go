package processor

import (
	"context"
	"errors"
	"log/slog"

	"claimflow/internal/message/models"
	"claimflow/internal/notification"
)

// SendEmail delivers a queued email. The message id is the email reference,
// so the notification service can tie a delivery back to the message.
type SendEmail struct {
	sender    EmailSender
	templates *notification.Templates
	replyToID string
	logger    *slog.Logger
}

func NewSendEmail(sender EmailSender, templates *notification.Templates, replyToID string, logger *slog.Logger) (*SendEmail, error) {
	if sender == nil || templates == nil {
		return nil, errors.New("send email: sender and templates are required")
	}
	return &SendEmail{sender: sender, templates: templates, replyToID: replyToID, logger: orDefault(logger)}, nil
}

func (p *SendEmail) MessageType() models.MessageType {
	return models.MessageTypeSendEmail
}

func (p *SendEmail) Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error) {
	payload, err := models.DecodePayload[models.SendEmailPayload](msg)
	if err != nil {
		return "", err
	}
	reference := msg.ID.String()

	templateID, err := p.templates.TemplateID(payload.EmailType)
	if err != nil {
		return "", &notification.SendError{EmailType: payload.EmailType, Reference: reference, Err: err}
	}
	err = p.sender.SendEmail(ctx, notification.SendRequest{
		TemplateID:      templateID,
		EmailAddress:    payload.EmailAddress,
		Personalisation: payload.EmailPersonalisation,
		Reference:       reference,
		ReplyToID:       p.replyToID,
	})
	if err != nil {
		return "", &notification.SendError{EmailType: payload.EmailType, Reference: reference, Err: err}
	}
	p.logger.InfoContext(ctx, "email sent",
		slog.String("claim_id", payload.ClaimID.String()),
		slog.String("email_type", string(payload.EmailType)),
	)
	return models.MessageStatusCompleted, nil
}
