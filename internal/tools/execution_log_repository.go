package tools

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ExecutionStatus is the lifecycle state of one tool invocation
type ExecutionStatus string

const (
	StatusStarted   ExecutionStatus = "started"
	StatusSucceeded ExecutionStatus = "succeeded"
	StatusFailed    ExecutionStatus = "failed"
)

// ExecutionLog is one audit row in audit.db
type ExecutionLog struct {
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	ID           string          `json:"id"`
	ToolName     string          `json:"tool_name"`
	Level        string          `json:"security_level"`
	UserID       string          `json:"user_id,omitempty"`
	InputJSON    string          `json:"input_json,omitempty"`
	Status       ExecutionStatus `json:"status"`
	OutputJSON   string          `json:"output_json,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// ExecutionLogStore persists the audit trail. Rows are created and updated, never deleted.
type ExecutionLogStore interface {
	Start(ctx context.Context, entry ExecutionLog) error
	Finish(ctx context.Context, id string, status ExecutionStatus, outputJSON, errorMessage string, finishedAt time.Time) error
}

// ExecutionLogRepository handles tool_execution_logs in audit.db
type ExecutionLogRepository struct {
	auditDB *sql.DB
	log     zerolog.Logger
}

const executionLogColumns = `id, tool_name, security_level, user_id, input_json, status, output_json, error_message, started_at, finished_at`

// NewExecutionLogRepository creates a new execution log repository
func NewExecutionLogRepository(auditDB *sql.DB, log zerolog.Logger) *ExecutionLogRepository {
	return &ExecutionLogRepository{
		auditDB: auditDB,
		log:     log.With().Str("repo", "tool_execution_log").Logger(),
	}
}

// Start inserts a row in the started state
func (r *ExecutionLogRepository) Start(ctx context.Context, entry ExecutionLog) error {
	_, err := r.auditDB.ExecContext(ctx, `
		INSERT INTO tool_execution_logs
		(id, tool_name, security_level, user_id, input_json, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.ToolName,
		entry.Level,
		nullString(entry.UserID),
		nullString(entry.InputJSON),
		string(StatusStarted),
		entry.StartedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create tool execution log: %w", err)
	}
	return nil
}

// Finish moves a started row to succeeded or failed
func (r *ExecutionLogRepository) Finish(ctx context.Context, id string, status ExecutionStatus, outputJSON, errorMessage string, finishedAt time.Time) error {
	result, err := r.auditDB.ExecContext(ctx, `
		UPDATE tool_execution_logs
		SET status = ?, output_json = ?, error_message = ?, finished_at = ?
		WHERE id = ? AND status = 'started'
	`,
		string(status),
		nullString(outputJSON),
		nullString(errorMessage),
		finishedAt.UnixMilli(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize tool execution log: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finalize tool execution log: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tool execution log %s not found or already finalized", id)
	}
	return nil
}

// GetByID returns a single audit row, or nil if absent
func (r *ExecutionLogRepository) GetByID(ctx context.Context, id string) (*ExecutionLog, error) {
	row := r.auditDB.QueryRowContext(ctx, "SELECT "+executionLogColumns+" FROM tool_execution_logs WHERE id = ?", id)
	entry, err := scanExecutionLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tool execution log: %w", err)
	}
	return entry, nil
}

// ListRecent returns the newest rows first, optionally filtered by tool name
func (r *ExecutionLogRepository) ListRecent(ctx context.Context, toolName string, limit int) ([]ExecutionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := "SELECT " + executionLogColumns + " FROM tool_execution_logs"
	args := []interface{}{}
	if toolName != "" {
		query += " WHERE tool_name = ?"
		args = append(args, toolName)
	}
	query += " ORDER BY started_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.auditDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tool execution logs: %w", err)
	}
	defer rows.Close()

	var out []ExecutionLog
	for rows.Next() {
		entry, err := scanExecutionLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tool execution log: %w", err)
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tool execution logs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExecutionLog(s rowScanner) (*ExecutionLog, error) {
	var entry ExecutionLog
	var userID, input, output, errorMessage sql.NullString
	var status string
	var startedAt int64
	var finishedAt sql.NullInt64
	if err := s.Scan(&entry.ID, &entry.ToolName, &entry.Level, &userID, &input, &status,
		&output, &errorMessage, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	entry.UserID = userID.String
	entry.InputJSON = input.String
	entry.Status = ExecutionStatus(status)
	entry.OutputJSON = output.String
	entry.ErrorMessage = errorMessage.String
	entry.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		t := time.UnixMilli(finishedAt.Int64).UTC()
		entry.FinishedAt = &t
	}
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
