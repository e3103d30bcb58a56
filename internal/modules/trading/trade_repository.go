package trading

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/domain"
)

// TradeRepository handles trade_events in ledger.db. Rows are never updated or deleted.
type TradeRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// tradeColumns is the list of columns for the trade_events table
// Column order must match scanTrade()
const tradeColumns = `id, portfolio_id, symbol, side, size, price, fee_amount, fee_pct, net_amount, timestamp, created_at`

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db database.Querier, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *TradeRepository) WithTx(tx database.Querier) *TradeRepository {
	return &TradeRepository{db: tx, log: r.log}
}

// Create appends a trade event
func (r *TradeRepository) Create(ctx context.Context, trade TradeEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trade_events
		(id, portfolio_id, symbol, side, size, price, fee_amount, fee_pct, net_amount, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		trade.ID,
		trade.PortfolioID,
		trade.Symbol,
		string(trade.Side),
		trade.Size,
		trade.Price,
		trade.FeeAmount,
		trade.FeePct,
		trade.NetAmount,
		trade.Timestamp.UnixMilli(),
		trade.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trade event: %w", err)
	}

	r.log.Info().
		Str("portfolio_id", trade.PortfolioID).
		Str("symbol", trade.Symbol).
		Str("side", string(trade.Side)).
		Float64("size", trade.Size).
		Msg("Trade event created")

	return nil
}

// GetByID returns a trade event or nil
func (r *TradeRepository) GetByID(ctx context.Context, id string) (*TradeEvent, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trade_events WHERE id = ?", id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade event: %w", err)
	}
	return trade, nil
}

// ListRecentBySymbol returns up to limit trades for (portfolioID, symbol), oldest first
func (r *TradeRepository) ListRecentBySymbol(ctx context.Context, portfolioID, symbol string, limit int) ([]TradeEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tradeColumns+` FROM (
			SELECT `+tradeColumns+`, rowid AS seq FROM trade_events
			WHERE portfolio_id = ? AND symbol = ?
			ORDER BY timestamp DESC, rowid DESC
			LIMIT ?
		) ORDER BY timestamp ASC, seq ASC
	`, portfolioID, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade events: %w", err)
	}
	defer rows.Close()

	var trades []TradeEvent
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade event: %w", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade events: %w", err)
	}
	return trades, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s rowScanner) (*TradeEvent, error) {
	var trade TradeEvent
	var side string
	var timestamp, createdAt int64
	if err := s.Scan(&trade.ID, &trade.PortfolioID, &trade.Symbol, &side, &trade.Size, &trade.Price,
		&trade.FeeAmount, &trade.FeePct, &trade.NetAmount, &timestamp, &createdAt); err != nil {
		return nil, err
	}
	trade.Side = domain.Side(side)
	trade.Timestamp = time.UnixMilli(timestamp).UTC()
	trade.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &trade, nil
}

// Returns converts consecutive trade prices into simple returns.
// Pairs with a zero previous price are skipped.
func Returns(trades []TradeEvent) []float64 {
	var out []float64
	for i := 1; i < len(trades); i++ {
		prev := trades[i-1].Price
		if prev == 0 {
			continue
		}
		out = append(out, trades[i].Price/prev-1)
	}
	return out
}
