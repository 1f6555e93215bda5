// Package httpclient is the JSON-over-HTTP plumbing shared by the
// collaborator adapters.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"claimflow/pkg/platform/sentinel"
)

const maxErrorBody = 4 << 10

// StatusError is returned for non-2xx responses. 5xx and 429 unwrap to
// sentinel.ErrUnavailable, 404 to sentinel.ErrNotFound.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
		return sentinel.ErrUnavailable
	default:
		return nil
	}
}

// RequestEditor decorates outgoing requests, e.g. with credentials.
type RequestEditor func(req *http.Request) error

type Client struct {
	service string
	baseURL string
	http    *http.Client
	editors []RequestEditor
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithRequestEditor(editor RequestEditor) Option {
	return func(c *Client) {
		c.editors = append(c.editors, editor)
	}
}

// New builds a client for the named service rooted at baseURL.
func New(service, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		tracer: otel.Tracer("claimflow/httpclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DoJSON sends in as the JSON body (when non-nil) and decodes a 2xx response
// into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	ctx, span := c.tracer.Start(ctx, c.service+" "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	err := c.do(ctx, method, path, in, out, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, span trace.Span) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", c.service, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, edit := range c.editors {
		if err := edit(req); err != nil {
			return fmt.Errorf("prepare %s request: %w", c.service, err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("call %s: %w", c.service, err)
		}
		return fmt.Errorf("call %s: %v: %w", c.service, err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.service, err)
	}
	return nil
}
