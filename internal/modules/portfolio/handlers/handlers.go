// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleListPortfolios returns the caller's portfolios with positions
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.service.List(r.Context(), auth.CallerFromContext(r.Context()))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if portfolios == nil {
		portfolios = []portfolio.Portfolio{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"portfolios": portfolios})
}

// HandleCreatePortfolio creates a portfolio for the caller
func (h *Handler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req portfolio.CreateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid input")
			return
		}
	}

	created, err := h.service.Create(r.Context(), auth.CallerFromContext(r.Context()), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"portfolio": created})
}

// HandleGetAllocation returns the allocation breakdown of one owned portfolio
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Allocation(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"allocation": result,
		"disclaimer": domain.Disclaimer,
	})
}

// Helper methods

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Portfolio request failed")
	}
	h.writeError(w, status, domain.PublicMessage(err))
}
