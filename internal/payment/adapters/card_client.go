package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"claimflow/internal/payment/models"
	"claimflow/pkg/platform/httpclient"
)

// CardClient talks to the card provider API.
type CardClient struct {
	client *httpclient.Client
}

func NewCardClient(baseURL string, timeout time.Duration, opts ...httpclient.Option) *CardClient {
	return &CardClient{client: httpclient.New("card", baseURL, timeout, opts...)}
}

func (c *CardClient) RequestNewCard(ctx context.Context, req models.CardRequest) (*models.CardResponse, error) {
	var resp models.CardResponse
	if err := c.client.DoJSON(ctx, http.MethodPost, "/v1/cards", req, &resp); err != nil {
		return nil, err
	}
	if resp.CardAccountID == "" {
		return nil, errors.New("card provider returned no card account id")
	}
	return &resp, nil
}

func (c *CardClient) GetBalance(ctx context.Context, cardAccountID string) (*models.CardBalance, error) {
	var resp models.CardBalance
	if err := c.client.DoJSON(ctx, http.MethodGet, "/v1/cards/"+url.PathEscape(cardAccountID)+"/balance", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *CardClient) DepositFunds(ctx context.Context, cardAccountID string, req models.DepositFundsRequest) (*models.DepositFundsResponse, error) {
	var resp models.DepositFundsResponse
	if err := c.client.DoJSON(ctx, http.MethodPost, "/v1/cards/"+url.PathEscape(cardAccountID)+"/deposit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
