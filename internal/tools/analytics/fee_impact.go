package analytics

import (
	"fmt"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/utils"
)

// TradeLeg is one trade fed to the fee impact tool
type TradeLeg struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Size   float64 `json:"size"`
	Price  float64 `json:"price"`
	Fee    float64 `json:"fee"`
}

// FeeImpactInput is the fee impact tool input
type FeeImpactInput struct {
	TradeEvents []TradeLeg `json:"tradeEvents"`
}

// SymbolFees aggregates fees for one symbol
type SymbolFees struct {
	Fees       float64 `json:"fees"`
	Notional   float64 `json:"notional"`
	FeeDragPct float64 `json:"feeDragPct"`
}

// FeeImpactResult is the fee impact tool output
type FeeImpactResult struct {
	TotalNotional float64               `json:"totalNotional"`
	TotalFees     float64               `json:"totalFees"`
	FeeDragPct    float64               `json:"feeDragPct"`
	BySymbol      map[string]SymbolFees `json:"bySymbol"`
}

// FeeImpact computes fee drag across trade legs
func FeeImpact() tools.Tool {
	return tools.Define(FeeImpactName,
		"Compute fee drag and fee impact across trade events.",
		tools.LevelUser,
		validateFeeImpact,
		ComputeFeeImpact,
	)
}

func validateFeeImpact(in *FeeImpactInput) error {
	var v domain.Violations
	for i, leg := range in.TradeEvents {
		field := fmt.Sprintf("tradeEvents[%d]", i)
		v.Check(leg.Symbol != "", field+".symbol", "is required")
		side := domain.Side(leg.Side)
		v.Check(side == domain.SideBuy || side == domain.SideSell, field+".side", "must be BUY or SELL")
		v.Finite(leg.Size, field+".size")
		v.Check(leg.Size > 0, field+".size", "must be positive")
		v.Finite(leg.Price, field+".price")
		v.Check(leg.Price >= 0, field+".price", "must be non-negative")
		v.Check(utils.IsFinite(leg.Size*leg.Price), field+".size", "size x price must be a finite number")
		v.Finite(leg.Fee, field+".fee")
		v.Check(leg.Fee >= 0, field+".fee", "must be non-negative")
	}
	return v.Err()
}

// ComputeFeeImpact aggregates per symbol in first-seen order so float sums are reproducible.
func ComputeFeeImpact(in FeeImpactInput) (FeeImpactResult, error) {
	type acc struct{ fees, notional float64 }

	order := make([]string, 0)
	sums := make(map[string]*acc)
	for _, leg := range in.TradeEvents {
		row, ok := sums[leg.Symbol]
		if !ok {
			row = &acc{}
			sums[leg.Symbol] = row
			order = append(order, leg.Symbol)
		}
		row.fees += leg.Fee
		row.notional += leg.Size * leg.Price
	}

	result := FeeImpactResult{BySymbol: make(map[string]SymbolFees, len(order))}
	for _, symbol := range order {
		row := sums[symbol]
		result.TotalFees += row.fees
		result.TotalNotional += row.notional
		result.BySymbol[symbol] = SymbolFees{
			Fees:       row.fees,
			Notional:   row.notional,
			FeeDragPct: ratio(row.fees, row.notional),
		}
	}
	result.FeeDragPct = ratio(result.TotalFees, result.TotalNotional)

	if err := finiteResult("tradeEvents", result.TotalNotional, result.TotalFees, result.FeeDragPct); err != nil {
		return FeeImpactResult{}, err
	}
	return result, nil
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
