// Package alerts stores user alerts, links them to logged trades and raises
// return anomaly alerts from the trade history.
package alerts

import (
	"time"
)

// TypeReturnAnomaly is raised by the risk monitor when the latest return is an outlier
const TypeReturnAnomaly = "RETURN_ANOMALY"

// RelatedWindow is how far back a logged trade looks for a related alert
const RelatedWindow = 24 * time.Hour

// Alert is a notification addressed to one user. PortfolioID, Symbol and Sector are optional.
type Alert struct {
	CreatedAt   time.Time              `json:"created_at"`
	ReadAt      *time.Time             `json:"read_at"`
	Data        map[string]interface{} `json:"data,omitempty"`
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	PortfolioID string                 `json:"portfolio_id,omitempty"`
	Symbol      string                 `json:"symbol,omitempty"`
	Sector      string                 `json:"sector,omitempty"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
}

// RelatedQuery describes the trade an alert may relate to
type RelatedQuery struct {
	Since       time.Time
	UserID      string
	PortfolioID string
	Symbol      string
	Sector      string
}
