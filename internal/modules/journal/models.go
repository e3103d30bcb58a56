// Package journal stores the journal entry created with every logged trade
// and the owner's later edits to its thesis and tags.
package journal

import (
	"time"

	"github.com/aristath/pragmas/internal/modules/alerts"
	"github.com/aristath/pragmas/internal/modules/risk"
	"github.com/aristath/pragmas/internal/modules/trading"
)

// ListLimit is the number of entries returned to a caller
const ListLimit = 50

// Entry is one-to-one with a trade event
type Entry struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Thesis         *string   `json:"thesis"`
	ID             string    `json:"id"`
	TradeEventID   string    `json:"trade_event_id"`
	RiskSnapshotID string    `json:"risk_snapshot_id"`
	RelatedAlertID string    `json:"related_alert_id,omitempty"`
	Tags           []string  `json:"tags"`
}

// PortfolioSummary is the part of a portfolio shown alongside a journal entry
type PortfolioSummary struct {
	ID           string `json:"id"`
	BaseCurrency string `json:"base_currency"`
	RiskProfile  string `json:"risk_profile"`
}

// TradeView is a trade event with its portfolio summary
type TradeView struct {
	trading.TradeEvent
	Portfolio PortfolioSummary `json:"portfolio"`
}

// EntryView is an entry with everything it references
type EntryView struct {
	Entry
	Trade        TradeView     `json:"trade"`
	RiskSnapshot risk.Snapshot `json:"risk_snapshot"`
	RelatedAlert *alerts.Alert `json:"related_alert"`
}

// UpdateRequest replaces the thesis and tags of an entry
type UpdateRequest struct {
	JournalID string   `json:"journal_id"`
	Thesis    *string  `json:"thesis"`
	Tags      []string `json:"tags"`
}
