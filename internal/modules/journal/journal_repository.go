package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/alerts"
	"github.com/aristath/pragmas/internal/modules/risk"
)

// JournalRepository handles journal_entries in ledger.db.
// Ownership is resolved through trade_events -> portfolios.user_id.
type JournalRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// entryColumns is the list of columns for the journal_entries table
// Column order must match scanEntry()
const entryColumns = `j.id, j.trade_event_id, j.risk_snapshot_id, j.related_alert_id, j.thesis, j.tags_json, j.created_at, j.updated_at`

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db database.Querier, log zerolog.Logger) *JournalRepository {
	return &JournalRepository{
		db:  db,
		log: log.With().Str("repo", "journal").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *JournalRepository) WithTx(tx database.Querier) *JournalRepository {
	return &JournalRepository{db: tx, log: r.log}
}

// Create stores a new entry
func (r *JournalRepository) Create(ctx context.Context, e Entry) error {
	tagsJSON, err := marshalTags(e.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO journal_entries
		(id, trade_event_id, risk_snapshot_id, related_alert_id, thesis, tags_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.TradeEventID,
		e.RiskSnapshotID,
		sql.NullString{String: e.RelatedAlertID, Valid: e.RelatedAlertID != ""},
		e.Thesis,
		tagsJSON,
		e.CreatedAt.UnixMilli(),
		e.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	r.log.Debug().Str("trade_event_id", e.TradeEventID).Msg("Journal entry created")
	return nil
}

// GetOwned returns the entry when its trade's portfolio belongs to userID.
// Missing and foreign entries are both NotFound.
func (r *JournalRepository) GetOwned(ctx context.Context, id, userID string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries j
		JOIN trade_events t ON t.id = j.trade_event_id
		JOIN portfolios p ON p.id = t.portfolio_id
		WHERE j.id = ? AND p.user_id = ?
	`, id, userID)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("Journal entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return e, nil
}

// Update replaces thesis and tags
func (r *JournalRepository) Update(ctx context.Context, id string, thesis *string, tags []string, at time.Time) error {
	tagsJSON, err := marshalTags(tags)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE journal_entries SET thesis = ?, tags_json = ?, updated_at = ? WHERE id = ?",
		thesis, tagsJSON, at.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("journal entry %s not found", id)
	}
	return nil
}

// ListByUser returns the user's most recent entries with their trade,
// portfolio, risk snapshot and related alert, newest first.
func (r *JournalRepository) ListByUser(ctx context.Context, userID string, limit int) ([]EntryView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`,
			t.id, t.portfolio_id, t.symbol, t.side, t.size, t.price, t.fee_amount, t.fee_pct, t.net_amount,
			t.timestamp, t.created_at,
			p.id, p.base_currency, p.risk_profile,
			s.id, s.portfolio_id, s.var_proxy, s.beta, s.exposure_json, s.timestamp, s.created_at,
			a.id, a.user_id, a.portfolio_id, a.symbol, a.sector, a.type, a.title, a.message, a.data_json,
			a.created_at, a.read_at
		FROM journal_entries j
		JOIN trade_events t ON t.id = j.trade_event_id
		JOIN portfolios p ON p.id = t.portfolio_id
		JOIN risk_snapshots s ON s.id = j.risk_snapshot_id
		LEFT JOIN alerts a ON a.id = j.related_alert_id
		WHERE p.user_id = ?
		ORDER BY j.created_at DESC, j.rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var views []EntryView
	for rows.Next() {
		view, err := scanEntryView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return views, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// entryFields are the scan targets for entryColumns
type entryFields struct {
	relatedAlertID sql.NullString
	thesis         sql.NullString
	tagsJSON       string
	createdAt      int64
	updatedAt      int64
}

func (f *entryFields) targets(e *Entry) []interface{} {
	return []interface{}{&e.ID, &e.TradeEventID, &e.RiskSnapshotID, &f.relatedAlertID, &f.thesis,
		&f.tagsJSON, &f.createdAt, &f.updatedAt}
}

func (f *entryFields) apply(e *Entry) error {
	e.RelatedAlertID = f.relatedAlertID.String
	if f.thesis.Valid {
		thesis := f.thesis.String
		e.Thesis = &thesis
	}
	e.Tags = []string{}
	if f.tagsJSON != "" {
		if err := json.Unmarshal([]byte(f.tagsJSON), &e.Tags); err != nil {
			return fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	e.CreatedAt = time.UnixMilli(f.createdAt).UTC()
	e.UpdatedAt = time.UnixMilli(f.updatedAt).UTC()
	return nil
}

func scanEntry(s rowScanner) (*Entry, error) {
	var e Entry
	var f entryFields
	if err := s.Scan(f.targets(&e)...); err != nil {
		return nil, err
	}
	if err := f.apply(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntryView(s rowScanner) (*EntryView, error) {
	var v EntryView
	var f entryFields
	var side, exposureJSON string
	var tradeTimestamp, tradeCreatedAt, snapTimestamp, snapCreatedAt int64
	var alertID, alertUserID, alertPortfolioID, alertSymbol, alertSector sql.NullString
	var alertType, alertTitle, alertMessage, alertData sql.NullString
	var alertCreatedAt, alertReadAt sql.NullInt64

	t := &v.Trade
	snap := &v.RiskSnapshot
	dest := append(f.targets(&v.Entry),
		&t.ID, &t.PortfolioID, &t.Symbol, &side, &t.Size, &t.Price, &t.FeeAmount, &t.FeePct, &t.NetAmount,
		&tradeTimestamp, &tradeCreatedAt,
		&t.Portfolio.ID, &t.Portfolio.BaseCurrency, &t.Portfolio.RiskProfile,
		&snap.ID, &snap.PortfolioID, &snap.VaRProxy, &snap.Beta, &exposureJSON, &snapTimestamp, &snapCreatedAt,
		&alertID, &alertUserID, &alertPortfolioID, &alertSymbol, &alertSector, &alertType, &alertTitle,
		&alertMessage, &alertData, &alertCreatedAt, &alertReadAt,
	)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	if err := f.apply(&v.Entry); err != nil {
		return nil, err
	}

	t.Side = domain.Side(side)
	t.Timestamp = time.UnixMilli(tradeTimestamp).UTC()
	t.CreatedAt = time.UnixMilli(tradeCreatedAt).UTC()

	exposure, err := risk.DecodeExposure(exposureJSON)
	if err != nil {
		return nil, err
	}
	snap.Exposure = exposure
	snap.Timestamp = time.UnixMilli(snapTimestamp).UTC()
	snap.CreatedAt = time.UnixMilli(snapCreatedAt).UTC()

	if alertID.Valid {
		a := &alerts.Alert{
			ID:          alertID.String,
			UserID:      alertUserID.String,
			PortfolioID: alertPortfolioID.String,
			Symbol:      alertSymbol.String,
			Sector:      alertSector.String,
			Type:        alertType.String,
			Title:       alertTitle.String,
			Message:     alertMessage.String,
			CreatedAt:   time.UnixMilli(alertCreatedAt.Int64).UTC(),
		}
		if alertReadAt.Valid {
			readAt := time.UnixMilli(alertReadAt.Int64).UTC()
			a.ReadAt = &readAt
		}
		if alertData.Valid && alertData.String != "" {
			if err := json.Unmarshal([]byte(alertData.String), &a.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal alert data: %w", err)
			}
		}
		v.RelatedAlert = a
	}

	return &v, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}
