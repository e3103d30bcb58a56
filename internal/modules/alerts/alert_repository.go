package alerts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/domain"
)

// AlertRepository handles alerts in ledger.db
type AlertRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// alertColumns is the list of columns for the alerts table
// Column order must match scanAlert()
const alertColumns = `id, user_id, portfolio_id, symbol, sector, type, title, message, data_json, created_at, read_at`

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db database.Querier, log zerolog.Logger) *AlertRepository {
	return &AlertRepository{
		db:  db,
		log: log.With().Str("repo", "alert").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *AlertRepository) WithTx(tx database.Querier) *AlertRepository {
	return &AlertRepository{db: tx, log: r.log}
}

// Create stores a new alert
func (r *AlertRepository) Create(ctx context.Context, a Alert) error {
	var dataJSON sql.NullString
	if a.Data != nil {
		data, err := json.Marshal(a.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal alert data: %w", err)
		}
		dataJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, user_id, portfolio_id, symbol, sector, type, title, message, data_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.UserID,
		nullString(a.PortfolioID),
		nullString(a.Symbol),
		nullString(a.Sector),
		a.Type,
		a.Title,
		a.Message,
		dataJSON,
		a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	r.log.Info().Str("type", a.Type).Str("symbol", a.Symbol).Msg("Alert created")
	return nil
}

// ListByUser returns the user's most recent alerts, newest first
func (r *AlertRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+alertColumns+` FROM alerts
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead sets read_at on an alert owned by userID.
// Alerts of other users are reported as not found.
func (r *AlertRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE alerts SET read_at = ? WHERE id = ? AND user_id = ?",
		at.UnixMilli(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("Alert not found")
	}
	return nil
}

// FindRelated returns the most recent alert of q.UserID created since q.Since
// that matches the portfolio, symbol or sector exactly, or mentions the symbol
// or sector in its title or message ignoring case. Returns nil when none match.
func (r *AlertRepository) FindRelated(ctx context.Context, q RelatedQuery) (*Alert, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+alertColumns+` FROM alerts
		WHERE user_id = ?1
		AND created_at >= ?2
		AND (
			portfolio_id = ?3
			OR symbol = ?4
			OR sector = ?5
			OR (?4 <> '' AND (instr(lower(title), lower(?4)) > 0 OR instr(lower(message), lower(?4)) > 0))
			OR (?5 <> '' AND (instr(lower(title), lower(?5)) > 0 OR instr(lower(message), lower(?5)) > 0))
		)
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, q.UserID, q.Since.UnixMilli(), q.PortfolioID, q.Symbol, q.Sector)

	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find related alert: %w", err)
	}
	return a, nil
}

// ExistsRecent reports whether an alert of alertType for (portfolioID, symbol) was created since since
func (r *AlertRepository) ExistsRecent(ctx context.Context, portfolioID, symbol, alertType string, since time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM alerts
		WHERE portfolio_id = ? AND symbol = ? AND type = ? AND created_at >= ?
	`, portfolioID, symbol, alertType, since.UnixMilli()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check recent alerts: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(s rowScanner) (*Alert, error) {
	var a Alert
	var portfolioID, symbol, sector, dataJSON sql.NullString
	var createdAt int64
	var readAt sql.NullInt64
	if err := s.Scan(&a.ID, &a.UserID, &portfolioID, &symbol, &sector, &a.Type, &a.Title, &a.Message,
		&dataJSON, &createdAt, &readAt); err != nil {
		return nil, err
	}

	a.PortfolioID = portfolioID.String
	a.Symbol = symbol.String
	a.Sector = sector.String
	a.CreatedAt = time.UnixMilli(createdAt).UTC()
	if readAt.Valid {
		t := time.UnixMilli(readAt.Int64).UTC()
		a.ReadAt = &t
	}
	if dataJSON.Valid && dataJSON.String != "" {
		if err := json.Unmarshal([]byte(dataJSON.String), &a.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alert data: %w", err)
		}
	}
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
