package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/common"
)

// handlePreferences handles GET and PUT /api/preferences — per-user UI
// settings (theme, display currency, default chart view) stored as
// UserKeyValue entries.
func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePreferencesGet(w, r)
	case http.MethodPut:
		s.handlePreferencesPut(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handlePreferencesGet(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entries, err := s.app.Storage.InternalStore().ListUserKV(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list preferences")
		WriteServiceError(w, err)
		return
	}

	prefs := map[string]string{}
	for _, kv := range entries {
		prefs[kv.Key] = kv.Value
	}
	WriteData(w, http.StatusOK, prefs)
}

// handlePreferencesPut merges the submitted keys. An empty value removes
// the key.
func (s *Server) handlePreferencesPut(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var updates map[string]string
	if !DecodeJSON(w, r, &updates) {
		return
	}

	store := s.app.Storage.InternalStore()
	for key, value := range updates {
		key = strings.TrimSpace(key)
		if key == "" {
			WriteError(w, http.StatusBadRequest, "preference key must not be empty")
			return
		}
		if value == "" {
			if err := store.DeleteUserKV(r.Context(), userID, key); err != nil {
				s.logger.Error().Err(err).Str("user_id", userID).Str("key", key).Msg("Failed to delete preference")
				WriteServiceError(w, err)
				return
			}
			continue
		}
		if err := store.SetUserKV(r.Context(), userID, key, value); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Str("key", key).Msg("Failed to save preference")
			WriteServiceError(w, err)
			return
		}
	}

	entries, err := store.ListUserKV(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	prefs := map[string]string{}
	for _, kv := range entries {
		prefs[kv.Key] = kv.Value
	}
	WriteData(w, http.StatusOK, prefs)
}
