// Package handlers provides HTTP handlers for alerts.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/alerts"
)

// Handler handles alert HTTP requests
type Handler struct {
	service *alerts.AlertService
	log     zerolog.Logger
}

// NewHandler creates a new alerts handler
func NewHandler(service *alerts.AlertService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "alerts").Logger(),
	}
}

// RegisterRoutes registers the alert routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/read", h.HandleMarkRead)
	})
}

// HandleList returns the caller's recent alerts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), auth.CallerFromContext(r.Context()))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []alerts.Alert{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": list})
}

// HandleMarkRead marks one alert as read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlertID string `json:"alert_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := h.service.MarkRead(r.Context(), auth.CallerFromContext(r.Context()), req.AlertID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
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

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Alerts request failed")
	}
	h.writeError(w, status, domain.PublicMessage(err))
}
