package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "pragmas",
	}

	writeJSON(s.log, w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func writeJSON(log zerolog.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeError(log zerolog.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(log, w, status, map[string]string{"error": message})
}

func writeDomainError(log zerolog.Logger, w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeError(log, w, status, domain.PublicMessage(err))
}
