package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/services/chat"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/profile"
	tcommon "github.com/bobmcallan/folio/tests/common"
)

// newTestServer builds a full server over in-memory stores and a stubbed
// engine, so tests exercise the real middleware and handler stack.
func newTestServer(t *testing.T) (*Server, *tcommon.MockStorageManager, *tcommon.MockGeminiClient) {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = "test-secret"

	logger := common.NewSilentLogger()
	storage := tcommon.NewMockStorageManager()
	engine := &tcommon.MockGeminiClient{Response: "Noted. What's your risk tolerance?"}

	profileService := profile.NewService(storage, logger)
	chatService := chat.NewService(storage, profileService, engine, logger)
	portfolioService := portfolio.NewService(storage, logger)

	a := &app.App{
		Config:           config,
		Logger:           logger,
		Storage:          storage,
		GeminiClient:     engine,
		ProfileService:   profileService,
		ChatService:      chatService,
		PortfolioService: portfolioService,
		StartupTime:      time.Now(),
	}

	return NewServer(a), storage, engine
}

// doRequest runs a request through the full handler stack.
func doRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// registerUser registers a user through the API and returns the session token.
func registerUser(t *testing.T, srv *Server, username string) string {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// doRequestWithCookie sends a GET with the session cookie instead of a
// bearer header.
func doRequestWithCookie(t *testing.T, srv *Server, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "ok", envelope.Status)
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}
