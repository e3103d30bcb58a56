// Package trading provides the append-only trade event ledger.
package trading

import (
	"time"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/utils"
)

// DefaultFeeBasisPoints is the fee estimate applied when a logged trade omits its fee (0.10%)
const DefaultFeeBasisPoints = 10

// TradeEvent is an immutable record of one logged trade
type TradeEvent struct {
	Timestamp   time.Time   `json:"timestamp"`
	CreatedAt   time.Time   `json:"created_at"`
	ID          string      `json:"id"`
	PortfolioID string      `json:"portfolio_id"`
	Symbol      string      `json:"symbol"`
	Side        domain.Side `json:"side"`
	Size        float64     `json:"size"`
	Price       float64     `json:"price"`
	FeeAmount   float64     `json:"fee_amount"`
	FeePct      float64     `json:"fee_pct"`
	NetAmount   float64     `json:"net_amount"`
}

// Notional returns size x price
func (t TradeEvent) Notional() float64 {
	return t.Size * t.Price
}

// EstimateFee is the deterministic fee for a trade logged without one
func EstimateFee(notional float64) float64 {
	return utils.Round8(utils.BasisPoints(notional, DefaultFeeBasisPoints))
}

// Amounts are the derived money fields of a trade. Fee is the unrounded
// fee the other fields were derived from.
type Amounts struct {
	Notional  float64
	Fee       float64
	FeeAmount float64
	FeePct    float64
	NetAmount float64
}

// ComputeAmounts derives fee and net amounts. A nil fee is estimated.
// fee_pct is 0 when notional is 0. All values are rounded to 8 places.
func ComputeAmounts(size, price float64, fee *float64) Amounts {
	notional := size * price

	feeAmount := EstimateFee(notional)
	if fee != nil {
		feeAmount = *fee
	}

	feePct := 0.0
	if notional != 0 {
		feePct = feeAmount / notional
	}

	return Amounts{
		Notional:  utils.Round8(notional),
		Fee:       feeAmount,
		FeeAmount: utils.Round8(feeAmount),
		FeePct:    utils.Round8(feePct),
		NetAmount: utils.Round8(notional - feeAmount),
	}
}
