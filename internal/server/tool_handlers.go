package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
)

// ExecutionLogLister reads the tool audit trail
type ExecutionLogLister interface {
	ListRecent(ctx context.Context, toolName string, limit int) ([]tools.ExecutionLog, error)
}

// ToolHandlers exposes the tool registry over HTTP
type ToolHandlers struct {
	executor *tools.Executor
	logs     ExecutionLogLister
	log      zerolog.Logger
}

// NewToolHandlers creates tool handlers
func NewToolHandlers(executor *tools.Executor, logs ExecutionLogLister, log zerolog.Logger) *ToolHandlers {
	return &ToolHandlers{
		executor: executor,
		logs:     logs,
		log:      log.With().Str("handler", "tools").Logger(),
	}
}

// RegisterRoutes registers the tool routes
func (h *ToolHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/tools", h.HandleList)
	r.Post("/tools/{name}", h.HandleExecute)
}

// HandleList returns every registered tool
func (h *ToolHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"tools": h.executor.Registry().List(),
	})
}

// HandleExecute runs one tool with the request body as input. Anonymous
// callers reach only PUBLIC tools; the executor enforces levels.
func (h *ToolHandlers) HandleExecute(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tool, ok := h.executor.Registry().Lookup(name)
	if !ok {
		writeError(h.log, w, http.StatusNotFound, "Tool not found")
		return
	}

	var input json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(h.log, w, http.StatusBadRequest, "Invalid input")
		return
	}

	result, err := h.executor.Execute(r.Context(), tool, input, auth.CallerFromContext(r.Context()))
	if err != nil {
		writeDomainError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"result":     result,
		"disclaimer": domain.Disclaimer,
	})
}

// HandleListExecutions returns recent audit rows, optionally filtered by ?tool=
func (h *ToolHandlers) HandleListExecutions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.logs.ListRecent(r.Context(), r.URL.Query().Get("tool"), limit)
	if err != nil {
		writeDomainError(h.log, w, err)
		return
	}
	if entries == nil {
		entries = []tools.ExecutionLog{}
	}
	writeJSON(h.log, w, http.StatusOK, map[string]interface{}{"executions": entries})
}
