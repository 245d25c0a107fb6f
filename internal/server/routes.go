package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/folio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/logout", s.handleAuthLogout)
	mux.HandleFunc("/api/auth/me", s.handleAuthMe)

	// Investor context
	mux.HandleFunc("/api/context", s.handleContext)

	// UI preferences
	mux.HandleFunc("/api/preferences", s.handlePreferences)

	// Chat
	mux.HandleFunc("/api/chat/init", s.handleChatInit)
	mux.HandleFunc("/api/chat/messages", s.handleChatMessages)
	mux.HandleFunc("/api/chat/send", s.handleChatSend)
	mux.HandleFunc("/api/chat/reject", s.handleChatReject)

	// Portfolios
	mux.HandleFunc("/api/portfolios/accept", s.handlePortfolioAccept)
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolios)
}

// routePortfolios dispatches /api/portfolios/{id}[/action] to the handlers.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "portfolio id is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		s.handlePortfolioByID(w, r, id)
	case "allocations":
		s.handlePortfolioAllocations(w, r, id)
	case "invest":
		s.handlePortfolioInvest(w, r, id)
	case "export":
		s.handlePortfolioExport(w, r, id, r.URL.Query().Get("format"))
	case "export/csv":
		s.handlePortfolioExport(w, r, id, "csv")
	case "export/json":
		s.handlePortfolioExport(w, r, id, "json")
	case "chart":
		s.handlePortfolioChart(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"storage_address":   s.app.Config.Storage.Address,
		"storage_namespace": s.app.Config.Storage.Namespace,
		"gemini_model":      s.app.Config.Clients.Gemini.Model,
		"gemini_key_set":    s.app.Config.Clients.Gemini.APIKey != "",
		"jwt_secret":        maskSecret(s.app.Config.Auth.JWTSecret),
		"uptime":            time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
