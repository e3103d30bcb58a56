// Package risk derives and stores the deterministic risk proxy recorded with each logged trade.
package risk

import (
	"time"

	"github.com/aristath/pragmas/internal/modules/portfolio"
	"github.com/aristath/pragmas/internal/tools/analytics"
)

// FixedBeta is the placeholder beta recorded on every snapshot
const FixedBeta = 1.0

// DefaultShockPct is the conservative sector shock applied when a trade is logged
const DefaultShockPct = -0.1

// Snapshot is an immutable risk proxy record for one portfolio
type Snapshot struct {
	Timestamp   time.Time          `json:"timestamp"`
	CreatedAt   time.Time          `json:"created_at"`
	Exposure    map[string]float64 `json:"exposure"`
	ID          string             `json:"id"`
	PortfolioID string             `json:"portfolio_id"`
	VaRProxy    float64            `json:"var_proxy"`
	Beta        float64            `json:"beta"`
}

// Mark is the best available price for one symbol when valuing a composition
type Mark struct {
	Symbol string
	Price  float64
}

// Composition values open positions at average cost, except the marked
// symbol which uses the mark price.
func Composition(positions []portfolio.Position, mark Mark) []analytics.StressPosition {
	out := make([]analytics.StressPosition, 0, len(positions))
	for _, p := range positions {
		if p.Quantity <= 0 {
			continue
		}
		price := p.AvgCost
		if p.Symbol == mark.Symbol {
			price = mark.Price
		}
		out = append(out, analytics.StressPosition{
			Symbol:      p.Symbol,
			Sector:      p.Sector,
			MarketValue: p.Quantity * price,
		})
	}
	return out
}

// SectorExposure sums market value per sector
func SectorExposure(positions []analytics.StressPosition) map[string]float64 {
	exposure := make(map[string]float64)
	for _, p := range positions {
		exposure[p.Sector] += p.MarketValue
	}
	return exposure
}

// Derive builds a snapshot from a stress test result. The VaR proxy is |pnl|,
// not a statistical quantile.
func Derive(id, portfolioID string, stress analytics.StressTestResult, exposure map[string]float64, at, now time.Time) Snapshot {
	varProxy := stress.PnL
	if varProxy < 0 {
		varProxy = -varProxy
	}
	return Snapshot{
		ID:          id,
		PortfolioID: portfolioID,
		VaRProxy:    varProxy,
		Beta:        FixedBeta,
		Exposure:    exposure,
		Timestamp:   at,
		CreatedAt:   now,
	}
}
