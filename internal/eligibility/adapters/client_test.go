package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/pkg/platform/sentinel"
)

func TestEligibilityClient_CheckEligibility(t *testing.T) {
	due := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, eligibilityPath, r.URL.Path)
		var req personRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "QQ123456C", req.Nino)
		assert.Equal(t, "1990-02-03", req.DateOfBirth)
		assert.Equal(t, "2026-07-01", req.PregnantDueOn)
		_, _ = w.Write([]byte(`{
			"eligibilityStatus": "ELIGIBLE",
			"dwpHouseholdIdentifier": "dwp-1",
			"hmrcHouseholdIdentifier": "hmrc-1",
			"dateOfBirthOfChildren": ["2025-11-20"]
		}`))
	}))
	defer srv.Close()

	client := NewEligibilityClient(srv.URL, time.Second)
	resp, err := client.CheckEligibility(context.Background(), claimmodels.Claimant{
		Nino:                 "QQ123456C",
		DateOfBirth:          time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC),
		ExpectedDeliveryDate: &due,
	})

	require.NoError(t, err)
	assert.Equal(t, claimmodels.EligibilityStatusEligible, resp.EligibilityStatus)
	assert.Equal(t, "hmrc-1", resp.HMRCHouseholdIdentifier)
	require.Len(t, resp.DateOfBirthOfChildren, 1)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), resp.DateOfBirthOfChildren[0])
}

func TestEligibilityClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewEligibilityClient(srv.URL, time.Second).CheckEligibility(context.Background(), claimmodels.Claimant{})

	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
