// Package handlers provides the HTTP handler for logging trades.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/tradelog"
)

// Handler handles trade log HTTP requests
type Handler struct {
	service *tradelog.TradeLogService
	log     zerolog.Logger
}

// NewHandler creates a new trade log handler
func NewHandler(service *tradelog.TradeLogService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "tradelog").Logger(),
	}
}

// RegisterRoutes registers the trade log route
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolio/log-entry", h.HandleLogEntry)
}

// HandleLogEntry logs one past trade. It never executes anything.
func (h *Handler) HandleLogEntry(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	if caller == nil {
		h.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req tradelog.LogTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	cmd, err := req.Validate(time.Now())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	result, err := h.service.LogTrade(r.Context(), caller, cmd)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
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
		h.log.Error().Err(err).Msg("Trade log request failed")
	}
	h.writeError(w, status, domain.PublicMessage(err))
}
