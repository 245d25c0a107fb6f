package server

import (
	"fmt"
	"net/http"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// handlePortfolios handles GET (list) and POST (manual create) /api/portfolios.
func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		portfolios, err := s.app.PortfolioService.List(r.Context(), userID)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list portfolios")
			WriteServiceError(w, err)
			return
		}
		WriteData(w, http.StatusOK, map[string]interface{}{"portfolios": portfolios})

	case http.MethodPost:
		var input interfaces.CreatePortfolioInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		portfolio, err := s.app.PortfolioService.Create(r.Context(), userID, input)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteData(w, http.StatusCreated, portfolio)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePortfolioAccept handles POST /api/portfolios/accept — turning a
// pending suggestion into a durable portfolio.
func (s *Server) handlePortfolioAccept(w http.ResponseWriter, r *http.Request) {
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
		Name         string `json:"name"`
		Goal         string `json:"goal"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	portfolio, err := s.app.PortfolioService.Accept(r.Context(), userID, req.SuggestionID, req.Name, req.Goal)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, portfolio)
}

// handlePortfolioByID handles GET and DELETE /api/portfolios/{id}.
func (s *Server) handlePortfolioByID(w http.ResponseWriter, r *http.Request, id string) {
	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		portfolio, err := s.app.PortfolioService.Get(r.Context(), userID, id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteData(w, http.StatusOK, portfolio)

	case http.MethodDelete:
		var req struct {
			ConfirmName string `json:"confirm_name"`
		}
		// Confirm name may ride in the body or the query string.
		confirmName := r.URL.Query().Get("confirm_name")
		if confirmName == "" && r.Body != nil && r.ContentLength > 0 {
			if !DecodeJSON(w, r, &req) {
				return
			}
			confirmName = req.ConfirmName
		}

		if err := s.app.PortfolioService.Delete(r.Context(), userID, id, confirmName); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteData(w, http.StatusOK, map[string]string{"message": "portfolio deleted"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handlePortfolioAllocations handles PUT /api/portfolios/{id}/allocations.
func (s *Server) handlePortfolioAllocations(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Allocations []models.Allocation `json:"allocations"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	portfolio, err := s.app.PortfolioService.UpdateAllocations(r.Context(), userID, id, req.Allocations)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, portfolio)
}

// handlePortfolioInvest handles POST /api/portfolios/{id}/invest.
func (s *Server) handlePortfolioInvest(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	portfolio, err := s.app.PortfolioService.Invest(r.Context(), userID, id, req.Amount)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, portfolio)
}

// handlePortfolioExport handles GET /api/portfolios/{id}/export/csv and
// /export/json (also reachable as /export?format=).
func (s *Server) handlePortfolioExport(w http.ResponseWriter, r *http.Request, id, format string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		data, err := s.app.PortfolioService.ExportCSV(r.Context(), userID, id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "portfolio-"+id+".csv"))
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	case "json":
		data, err := s.app.PortfolioService.ExportJSON(r.Context(), userID, id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "portfolio-"+id+".json"))
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	default:
		WriteError(w, http.StatusBadRequest, "unsupported export format: "+format)
	}
}

// handlePortfolioChart handles GET /api/portfolios/{id}/chart — allocation
// breakdown as PNG.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	png, err := s.app.PortfolioService.RenderAllocationChart(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
