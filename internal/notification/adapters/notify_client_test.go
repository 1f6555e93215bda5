package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/notification"
)

func TestTokenSigner_SignAndVerify(t *testing.T) {
	signer := NewTokenSigner("service-1", "secret")
	signer.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	token, err := signer.Sign()
	require.NoError(t, err)

	claims, err := NewTokenSigner("service-1", "secret").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "service-1", claims.Issuer)

	_, err = NewTokenSigner("service-1", "other").Verify(token)
	assert.Error(t, err)
}

func TestTokenSigner_RequiresKey(t *testing.T) {
	_, err := NewTokenSigner("service-1", "").Sign()
	assert.ErrorContains(t, err, "secret key")
}

func TestNotifyClient_SendEmail(t *testing.T) {
	signer := NewTokenSigner("service-1", "secret")
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, emailPath, r.URL.Path)
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		_, err := signer.Verify(token)
		assert.NoError(t, err)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"n-1"}`))
	}))
	defer srv.Close()

	client := NewNotifyClient(srv.URL, signer, time.Second)
	err := client.SendEmail(context.Background(), notification.SendRequest{
		TemplateID:      "tmpl-1",
		EmailAddress:    "lisa@example.com",
		Personalisation: map[string]any{"first_name": "Lisa"},
		Reference:       "msg-1",
		ReplyToID:       "reply-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "tmpl-1", got.TemplateID)
	assert.Equal(t, "lisa@example.com", got.EmailAddress)
	assert.Equal(t, "msg-1", got.Reference)
	assert.Equal(t, "reply-1", got.EmailReplyToID)
	assert.Equal(t, "Lisa", got.Personalisation["first_name"])
}

func TestNotifyClient_RejectedEmailIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errors":[{"error":"BadRequestError"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewNotifyClient(srv.URL, NewTokenSigner("s", "k"), time.Second).
		SendEmail(context.Background(), notification.SendRequest{TemplateID: "t"})

	assert.ErrorContains(t, err, "BadRequestError")
}
