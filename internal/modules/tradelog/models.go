// Package tradelog records one logged trade atomically: the trade event,
// the position ledger, the fee and stress tools, the risk snapshot, the
// related alert and the journal entry.
package tradelog

import (
	"strings"
	"time"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/modules/trading"
	"github.com/aristath/pragmas/internal/tools/analytics"
	"github.com/aristath/pragmas/internal/utils"
)

// LogTradeRequest is the inbound body of a trade log.
// Side is accepted as an alias of Direction.
type LogTradeRequest struct {
	FeeAmount   *float64 `json:"fee_amount"`
	PortfolioID string   `json:"portfolio_id"`
	Symbol      string   `json:"symbol"`
	Direction   string   `json:"direction"`
	Side        string   `json:"side"`
	Timestamp   string   `json:"timestamp"`
	AssetClass  string   `json:"asset_class"`
	Sector      string   `json:"sector"`
	Tags        []string `json:"tags"`
	Quantity    float64  `json:"quantity"`
	Price       float64  `json:"price"`
}

// TradeCommand is a validated trade log with defaults applied and free text
// already reduced to plain text.
type TradeCommand struct {
	Timestamp   time.Time
	FeeAmount   *float64
	PortfolioID string
	Symbol      string
	Side        domain.Side
	AssetClass  string
	Sector      string
	Tags        []string
	Quantity    float64
	Price       float64
}

// Validate checks the request and converts it into a command. It is the
// sanitisation boundary: symbol, classification and tags are normalised here.
func (r LogTradeRequest) Validate(now time.Time) (TradeCommand, error) {
	var v domain.Violations

	cmd := TradeCommand{
		PortfolioID: strings.TrimSpace(r.PortfolioID),
		Symbol:      domain.NormalizeSymbol(utils.SanitizeText(r.Symbol)),
		AssetClass:  orUnknown(utils.SanitizeText(r.AssetClass)),
		Sector:      orUnknown(utils.SanitizeText(r.Sector)),
		Quantity:    r.Quantity,
		Price:       r.Price,
		Timestamp:   now.UTC(),
	}

	v.Check(cmd.PortfolioID != "", "portfolio_id", "is required")
	v.Check(cmd.Symbol != "", "symbol", "is required")

	direction := r.Direction
	if direction == "" {
		direction = r.Side
	}
	side, err := domain.ParseSide(direction)
	if err != nil {
		v.Add("direction", "must be BUY or SELL")
	}
	cmd.Side = side

	v.Finite(r.Quantity, "quantity")
	v.Check(r.Quantity > 0, "quantity", "must be positive")
	v.Finite(r.Price, "price")
	v.Check(r.Price >= 0, "price", "must be non-negative")
	v.Check(utils.IsFinite(r.Quantity*r.Price), "quantity", "quantity x price must be a finite number")

	if r.FeeAmount != nil {
		v.Finite(*r.FeeAmount, "fee_amount")
		v.Check(*r.FeeAmount >= 0, "fee_amount", "must be non-negative")
		fee := *r.FeeAmount
		cmd.FeeAmount = &fee
	}

	if r.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			v.Add("timestamp", "must be an ISO-8601 date-time")
		} else {
			cmd.Timestamp = ts.UTC()
		}
	}

	for _, tag := range r.Tags {
		if tag == "" {
			v.Add("tags", "must not contain empty tags")
		}
	}
	cmd.Tags = utils.NormalizeTags(r.Tags)

	if err := v.Err(); err != nil {
		return TradeCommand{}, err
	}
	return cmd, nil
}

func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}

// Computed holds the tool outputs produced while logging a trade
type Computed struct {
	FeeImpact      analytics.FeeImpactResult  `json:"feeImpact"`
	StressTest     analytics.StressTestResult `json:"stressTest"`
	RiskSnapshotID string                     `json:"riskSnapshotId"`
}

// Result is the outcome of one logged trade
type Result struct {
	Trade          trading.TradeEvent `json:"trade"`
	JournalID      string             `json:"journal_id"`
	RelatedAlertID string             `json:"related_alert_id,omitempty"`
	Computed       Computed           `json:"computed"`
	Disclaimer     string             `json:"disclaimer"`
}
