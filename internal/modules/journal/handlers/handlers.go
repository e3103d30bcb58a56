// Package handlers provides HTTP handlers for the trade journal.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/journal"
)

// Handler handles journal HTTP requests
type Handler struct {
	service *journal.JournalService
	log     zerolog.Logger
}

// NewHandler creates a new journal handler
func NewHandler(service *journal.JournalService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "journal").Logger(),
	}
}

// RegisterRoutes registers the journal routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/journal", h.HandleList)
	r.Post("/journal", h.HandleUpdate)
}

// HandleList returns the caller's recent journal entries
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), auth.CallerFromContext(r.Context()))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []journal.EntryView{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// HandleUpdate replaces the thesis and tags of one entry
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req journal.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	entry, err := h.service.Update(r.Context(), auth.CallerFromContext(r.Context()), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"entry": entry})
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
		h.log.Error().Err(err).Msg("Journal request failed")
	}
	h.writeError(w, status, domain.PublicMessage(err))
}
