package adapters

import (
	"context"
	"net/http"
	"time"

	"claimflow/internal/notification"
	"claimflow/pkg/platform/httpclient"
)

const emailPath = "/v2/notifications/email"

// NotifyClient sends emails through the notification service.
type NotifyClient struct {
	client *httpclient.Client
}

func NewNotifyClient(baseURL string, signer *TokenSigner, timeout time.Duration, opts ...httpclient.Option) *NotifyClient {
	opts = append(opts, httpclient.WithRequestEditor(func(req *http.Request) error {
		token, err := signer.Sign()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}))
	return &NotifyClient{client: httpclient.New("notify", baseURL, timeout, opts...)}
}

type emailRequest struct {
	EmailAddress    string         `json:"email_address"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
	EmailReplyToID  string         `json:"email_reply_to_id,omitempty"`
}

type emailResponse struct {
	ID string `json:"id"`
}

func (c *NotifyClient) SendEmail(ctx context.Context, req notification.SendRequest) error {
	var resp emailResponse
	return c.client.DoJSON(ctx, http.MethodPost, emailPath, emailRequest{
		EmailAddress:    req.EmailAddress,
		TemplateID:      req.TemplateID,
		Personalisation: req.Personalisation,
		Reference:       req.Reference,
		EmailReplyToID:  req.ReplyToID,
	}, &resp)
}
