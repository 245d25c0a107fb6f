package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/models"
)

func TestContextGetReturnsDefaultProfile(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "alice")

	rec := doRequest(t, srv, http.MethodGet, "/api/context", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.InvestorProfile
	decodeData(t, rec, &profile)
	assert.Equal(t, "alice", profile.UserID)
	assert.Empty(t, profile.RiskTolerance)
	assert.NotNil(t, profile.LiquidityRequirements)
}

func TestContextPut(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "bob")

	rec := doRequest(t, srv, http.MethodPut, "/api/context", token, map[string]interface{}{
		"risk_tolerance":     "moderate",
		"roi_expectations":   7.5,
		"time_horizon_years": 20,
		"liquidity_requirements": []interface{}{
			"Retirement planning",
			map[string]interface{}{"goal_name": "House Down Payment", "target_amount": 50000, "priority": "high"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.InvestorProfile
	decodeData(t, rec, &updated)
	assert.Equal(t, models.RiskModerate, updated.RiskTolerance)
	require.Len(t, updated.LiquidityRequirements, 2)
	assert.Equal(t, "Retirement planning", updated.LiquidityRequirements[0].Name)
	require.NotNil(t, updated.LiquidityRequirements[1].TargetAmount)
	assert.Equal(t, 50000.0, *updated.LiquidityRequirements[1].TargetAmount)

	// Round-trips through GET.
	rec = doRequest(t, srv, http.MethodGet, "/api/context", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched models.InvestorProfile
	decodeData(t, rec, &fetched)
	assert.Equal(t, 7.5, fetched.ROIExpectations)
	assert.Len(t, fetched.LiquidityRequirements, 2)
}

func TestContextPutValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "carol")

	rec := doRequest(t, srv, http.MethodPut, "/api/context", token, map[string]interface{}{
		"risk_tolerance": "reckless",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContextUserIDComesFromSession(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "dave")

	// A user_id in the body is ignored in favor of the session identity.
	rec := doRequest(t, srv, http.MethodPut, "/api/context", token, map[string]interface{}{
		"user_id":        "mallory",
		"risk_tolerance": "moderate",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.InvestorProfile
	decodeData(t, rec, &updated)
	assert.Equal(t, "dave", updated.UserID)
}
