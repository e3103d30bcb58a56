package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
)

// Executor runs tools with capability enforcement and before/after audit logging.
//
// The audit trail is a best-effort channel: failures writing it are logged at
// WARN and never change the result returned to the caller.
type Executor struct {
	registry *Registry
	logs     ExecutionLogStore
	log      zerolog.Logger
	now      func() time.Time
}

// NewExecutor creates a new executor
func NewExecutor(registry *Registry, logs ExecutionLogStore, log zerolog.Logger) *Executor {
	return &Executor{
		registry: registry,
		logs:     logs,
		log:      log.With().Str("component", "tool_executor").Logger(),
		now:      time.Now,
	}
}

// Registry returns the registry the executor resolves names against
func (e *Executor) Registry() *Registry {
	return e.registry
}

// ExecuteByName resolves name in the registry and executes it.
// A missing tool is a DependencyMissing error.
func (e *Executor) ExecuteByName(ctx context.Context, name string, raw any, caller *domain.Caller) (any, error) {
	tool, err := e.registry.MustLookup(name)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, tool, raw, caller)
}

// Execute authorizes, audits, validates and runs one tool invocation.
func (e *Executor) Execute(ctx context.Context, tool Tool, raw any, caller *domain.Caller) (any, error) {
	if err := Authorize(tool.Level(), caller); err != nil {
		return nil, err
	}

	logger := e.log.With().
		Str("tool", tool.Name()).
		Str("level", tool.Level().String()).
		Str("caller_id", callerID(caller)).
		Logger()

	logID := e.startLog(ctx, logger, tool, raw, caller)
	logger.Info().Msg("Tool execution started")

	input, err := tool.Validate(raw)
	if err != nil {
		e.finishLog(ctx, logger, logID, StatusFailed, "", err.Error())
		logger.Error().Err(err).Msg("Tool input validation failed")
		return nil, err
	}

	output, err := tool.Execute(ctx, input, caller)
	if err != nil {
		e.finishLog(ctx, logger, logID, StatusFailed, "", err.Error())
		logger.Error().Err(err).Msg("Tool execution failed")
		return nil, err
	}

	e.finishLog(ctx, logger, logID, StatusSucceeded, snapshot(logger, output), "")
	logger.Info().Msg("Tool execution succeeded")

	return output, nil
}

// Run executes the named tool and asserts its output type.
func Run[Out any](ctx context.Context, e *Executor, name string, raw any, caller *domain.Caller) (Out, error) {
	var zero Out
	output, err := e.ExecuteByName(ctx, name, raw, caller)
	if err != nil {
		return zero, err
	}
	typed, ok := output.(Out)
	if !ok {
		return zero, fmt.Errorf("tool %s returned %T, want %T", name, output, zero)
	}
	return typed, nil
}

// startLog returns the audit row id, or "" when the row could not be written.
func (e *Executor) startLog(ctx context.Context, logger zerolog.Logger, tool Tool, raw any, caller *domain.Caller) string {
	if e.logs == nil {
		return ""
	}

	entry := ExecutionLog{
		ID:        uuid.NewString(),
		ToolName:  tool.Name(),
		Level:     tool.Level().String(),
		UserID:    callerID(caller),
		InputJSON: snapshot(logger, raw),
		Status:    StatusStarted,
		StartedAt: e.now(),
	}
	if err := e.logs.Start(ctx, entry); err != nil {
		logger.Warn().Err(err).Msg("Tool log create failed")
		return ""
	}
	return entry.ID
}

func (e *Executor) finishLog(ctx context.Context, logger zerolog.Logger, id string, status ExecutionStatus, outputJSON, errorMessage string) {
	if id == "" {
		return
	}
	if err := e.logs.Finish(ctx, id, status, outputJSON, errorMessage, e.now()); err != nil {
		logger.Warn().Err(err).Str("status", string(status)).Msg("Tool log update failed")
	}
}

// snapshot renders v as JSON for the audit trail. Raw JSON input is kept as sent.
func snapshot(logger zerolog.Logger, v any) string {
	switch b := v.(type) {
	case nil:
		return ""
	case json.RawMessage:
		if json.Valid(b) {
			return string(b)
		}
	case []byte:
		if json.Valid(b) {
			return string(b)
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn().Err(err).Msg("Tool snapshot is not JSON-encodable")
		return ""
	}
	return string(data)
}

func callerID(caller *domain.Caller) string {
	if caller == nil {
		return ""
	}
	return caller.ID
}
