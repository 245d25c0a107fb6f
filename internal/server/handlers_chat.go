package server

import (
	"net/http"

	"github.com/bobmcallan/folio/internal/common"
)

// handleChatInit handles GET/POST /api/chat/init. Seeds the one-time
// greeting; returns it on the first call and {"message": null} afterwards.
func (s *Server) handleChatInit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	msg, err := s.app.ChatService.InitIfEmpty(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to initialize chat")
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{"message": msg})
}

// handleChatMessages handles GET /api/chat/messages?portfolio_id=...
func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	portfolioID := r.URL.Query().Get("portfolio_id")
	messages, err := s.app.ChatService.List(r.Context(), userID, portfolioID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list chat messages")
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// handleChatSend handles POST /api/chat/send.
func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Message     string `json:"message"`
		PortfolioID string `json:"portfolio_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	reply, err := s.app.ChatService.Send(r.Context(), userID, req.PortfolioID, req.Message)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, reply)
}

// handleChatReject handles POST /api/chat/reject.
func (s *Server) handleChatReject(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		SuggestionID string `json:"suggestion_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := s.app.ChatService.Reject(r.Context(), userID, req.SuggestionID); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"message": "suggestion rejected"})
}
