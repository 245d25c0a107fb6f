package server

import (
	"net/http"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

// handleContext handles GET and PUT /api/context — the accumulated investor
// profile behind the profile form.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleContextGet(w, r)
	case http.MethodPut:
		s.handleContextPut(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleContextGet(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := s.app.ProfileService.Get(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, profile)
}

func (s *Server) handleContextPut(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var profile models.InvestorProfile
	if !DecodeJSON(w, r, &profile) {
		return
	}
	profile.UserID = userID

	updated, err := s.app.ProfileService.Update(r.Context(), &profile)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, updated)
}
