// Package handlers provides HTTP handlers for the risk tools.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/risk"
)

// Handler handles risk HTTP requests
type Handler struct {
	service *risk.RiskService
	log     zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(service *risk.RiskService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

// RegisterRoutes registers the risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/risk", h.HandleRun)
}

// HandleRun runs a stress test or z-score anomaly check
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req risk.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	result, err := h.service.Run(r.Context(), auth.CallerFromContext(r.Context()), req)
	if err != nil {
		status := domain.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("action", req.Action).Msg("Risk request failed")
		}
		h.writeError(w, status, domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":     result,
		"disclaimer": domain.Disclaimer,
	})
}

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
