// Package portfolio provides tenant-scoped portfolios and the weighted-average-cost position ledger.
package portfolio

import "time"

// Defaults applied when creating a portfolio
const (
	DefaultBaseCurrency = "USD"
	DefaultRiskProfile  = "balanced"
)

// Portfolio belongs to exactly one user
type Portfolio struct {
	CreatedAt    time.Time  `json:"created_at"`
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	BaseCurrency string     `json:"base_currency"`
	RiskProfile  string     `json:"risk_profile"`
	Positions    []Position `json:"positions,omitempty"`
}

// Position is the single mutable holding per (portfolio, symbol).
// Quantity never drops below zero and the row is never deleted.
type Position struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolio_id"`
	Symbol      string    `json:"symbol"`
	AssetClass  string    `json:"asset_class"`
	Sector      string    `json:"sector"`
	Quantity    float64   `json:"quantity"`
	AvgCost     float64   `json:"avg_cost"`
}

// OwnedPosition is an open position with the id of the user owning its portfolio
type OwnedPosition struct {
	Position
	UserID string `json:"user_id"`
}
