package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/utils"
)

// LedgerTrade is the part of a logged trade the ledger needs
type LedgerTrade struct {
	PortfolioID string
	Symbol      string
	Side        domain.Side
	Quantity    float64
	Price       float64
	AssetClass  string
	Sector      string
}

// NextPosition applies weighted-average-cost accounting to existing.
// It returns nil when a SELL arrives without a holding: no short positions are created.
//
//   - BUY:  qty' = qty + q; avg' = (qty*avg + q*price) / qty' (0 when qty' is 0)
//   - SELL: qty' = max(0, qty - q); avg unchanged
//
// Asset class and sector always take the latest trade's values.
func NextPosition(existing *Position, trade LedgerTrade, now time.Time) *Position {
	if existing == nil {
		if trade.Side == domain.SideSell {
			return nil
		}
		return &Position{
			ID:          uuid.NewString(),
			PortfolioID: trade.PortfolioID,
			Symbol:      trade.Symbol,
			Quantity:    utils.Round8(trade.Quantity),
			AvgCost:     utils.Round8(trade.Price),
			AssetClass:  trade.AssetClass,
			Sector:      trade.Sector,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	next := *existing
	next.AssetClass = trade.AssetClass
	next.Sector = trade.Sector
	next.UpdatedAt = now

	switch trade.Side {
	case domain.SideBuy:
		qty := existing.Quantity + trade.Quantity
		avg := 0.0
		if qty != 0 {
			avg = (existing.Quantity*existing.AvgCost + trade.Quantity*trade.Price) / qty
		}
		next.Quantity = utils.Round8(qty)
		next.AvgCost = utils.Round8(avg)
	case domain.SideSell:
		next.Quantity = utils.Round8(math.Max(0, existing.Quantity-trade.Quantity))
	}

	return &next
}

// Ledger maintains one position per (portfolio, symbol)
type Ledger struct {
	positions *PositionRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedger creates a ledger over the given position repository
func NewLedger(positions *PositionRepository, log zerolog.Logger) *Ledger {
	return &Ledger{
		positions: positions,
		log:       log.With().Str("service", "ledger").Logger(),
		now:       time.Now,
	}
}

// WithTx returns a ledger whose reads and writes run inside tx
func (l *Ledger) WithTx(tx database.Querier) *Ledger {
	return &Ledger{positions: l.positions.WithTx(tx), log: l.log, now: l.now}
}

// ApplyTrade reads the current position and writes the next one.
// Run it inside the trade transaction: the read-modify-write relies on the
// store's write lock being held from the read until commit.
func (l *Ledger) ApplyTrade(ctx context.Context, trade LedgerTrade) (*Position, error) {
	existing, err := l.positions.GetBySymbol(ctx, trade.PortfolioID, trade.Symbol)
	if err != nil {
		return nil, err
	}

	next := NextPosition(existing, trade, l.now().UTC())
	if next == nil {
		l.log.Debug().
			Str("portfolio_id", trade.PortfolioID).
			Str("symbol", trade.Symbol).
			Msg("Sell without holding, no position created")
		return nil, nil
	}

	if existing == nil {
		err = l.positions.Insert(ctx, *next)
	} else {
		err = l.positions.Update(ctx, *next)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply trade to ledger: %w", err)
	}

	l.log.Debug().
		Str("portfolio_id", trade.PortfolioID).
		Str("symbol", trade.Symbol).
		Float64("quantity", next.Quantity).
		Float64("avg_cost", next.AvgCost).
		Msg("Position updated")

	return next, nil
}
