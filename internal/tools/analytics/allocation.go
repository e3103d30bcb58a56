package analytics

import (
	"fmt"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
)

// AllocationPosition is one holding marked at a market value
type AllocationPosition struct {
	Symbol      string  `json:"symbol"`
	MarketValue float64 `json:"marketValue"`
	AssetClass  string  `json:"assetClass"`
	Sector      string  `json:"sector"`
}

// AllocationInput is the allocation tool input
type AllocationInput struct {
	Positions []AllocationPosition `json:"positions"`
}

// AllocationResult is the allocation tool output
type AllocationResult struct {
	TotalMarketValue float64            `json:"totalMarketValue"`
	ByAssetClass     map[string]float64 `json:"byAssetClass"`
	BySector         map[string]float64 `json:"bySector"`
}

// Allocation sums market value by asset class and sector
func Allocation() tools.Tool {
	return tools.Define(AllocationName,
		"Compute allocation breakdown by asset class and sector.",
		tools.LevelUser,
		validateAllocation,
		ComputeAllocation,
	)
}

func validateAllocation(in *AllocationInput) error {
	var v domain.Violations
	for i, p := range in.Positions {
		field := fmt.Sprintf("positions[%d]", i)
		v.Check(p.Symbol != "", field+".symbol", "is required")
		v.Check(p.AssetClass != "", field+".assetClass", "is required")
		v.Check(p.Sector != "", field+".sector", "is required")
		v.Finite(p.MarketValue, field+".marketValue")
		v.Check(p.MarketValue >= 0, field+".marketValue", "must be non-negative")
	}
	return v.Err()
}

// ComputeAllocation is the pure allocation computation
func ComputeAllocation(in AllocationInput) (AllocationResult, error) {
	result := AllocationResult{
		ByAssetClass: make(map[string]float64),
		BySector:     make(map[string]float64),
	}
	for _, p := range in.Positions {
		result.TotalMarketValue += p.MarketValue
		result.ByAssetClass[p.AssetClass] += p.MarketValue
		result.BySector[p.Sector] += p.MarketValue
	}
	if err := finiteResult("positions", result.TotalMarketValue); err != nil {
		return AllocationResult{}, err
	}
	return result, nil
}
