package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesRoundTrip(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "paula")

	rec := doRequest(t, srv, http.MethodGet, "/api/preferences", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs map[string]string
	decodeData(t, rec, &prefs)
	assert.Empty(t, prefs)

	rec = doRequest(t, srv, http.MethodPut, "/api/preferences", token, map[string]string{
		"theme":            "dark",
		"display_currency": "USD",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	prefs = map[string]string{}
	decodeData(t, rec, &prefs)
	assert.Equal(t, "dark", prefs["theme"])
	assert.Equal(t, "USD", prefs["display_currency"])

	// Partial update merges; an empty value removes the key.
	rec = doRequest(t, srv, http.MethodPut, "/api/preferences", token, map[string]string{
		"theme": "",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	prefs = map[string]string{}
	decodeData(t, rec, &prefs)
	_, hasTheme := prefs["theme"]
	assert.False(t, hasTheme)
	assert.Equal(t, "USD", prefs["display_currency"])
}

func TestPreferencesRejectEmptyKey(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerUser(t, srv, "quinn")

	rec := doRequest(t, srv, http.MethodPut, "/api/preferences", token, map[string]string{
		"  ": "dark",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferencesIsolatedBetweenUsers(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ruthToken := registerUser(t, srv, "ruth")
	samToken := registerUser(t, srv, "sam")

	rec := doRequest(t, srv, http.MethodPut, "/api/preferences", ruthToken, map[string]string{
		"theme": "dark",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/preferences", samToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs map[string]string
	decodeData(t, rec, &prefs)
	assert.Empty(t, prefs)
}

func TestPreferencesRequireAuth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/preferences", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
