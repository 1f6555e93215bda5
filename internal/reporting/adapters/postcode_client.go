package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"claimflow/internal/reporting"
	"claimflow/pkg/platform/httpclient"
	"claimflow/pkg/platform/sentinel"
)

// PostcodeClient looks postcodes up on a postcodes.io compatible API.
type PostcodeClient struct {
	client *httpclient.Client
}

func NewPostcodeClient(baseURL string, timeout time.Duration, opts ...httpclient.Option) *PostcodeClient {
	return &PostcodeClient{client: httpclient.New("postcodes", baseURL, timeout, opts...)}
}

type postcodeResponse struct {
	Result *reporting.PostcodeData `json:"result"`
}

func (c *PostcodeClient) Lookup(ctx context.Context, postcode string) (reporting.PostcodeData, error) {
	normalised := reporting.NormalisePostcode(postcode)
	var resp postcodeResponse
	err := c.client.DoJSON(ctx, http.MethodGet, "/postcodes/"+url.PathEscape(normalised), nil, &resp)
	if errors.Is(err, sentinel.ErrNotFound) {
		return reporting.PostcodeDataNotFound, nil
	}
	if err != nil {
		return reporting.PostcodeData{}, err
	}
	if resp.Result == nil {
		return reporting.PostcodeData{}, fmt.Errorf("postcode %s: empty result", normalised)
	}
	return *resp.Result, nil
}
