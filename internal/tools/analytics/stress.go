package analytics

import (
	"fmt"
	"strings"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/utils"
)

// StressPosition is one holding in a stress scenario
type StressPosition struct {
	Symbol      string  `json:"symbol"`
	Sector      string  `json:"sector"`
	MarketValue float64 `json:"marketValue"`
}

// Scenario shocks every position in Sector by ShockPct (-0.2 is -20%)
type Scenario struct {
	Sector   string  `json:"sector"`
	ShockPct float64 `json:"shockPct"`
}

// StressTestInput is the stress test tool input
type StressTestInput struct {
	Positions []StressPosition `json:"positions"`
	Scenario  Scenario         `json:"scenario"`
}

// PositionShock is the per-position effect of a scenario
type PositionShock struct {
	Symbol string  `json:"symbol"`
	Sector string  `json:"sector"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	PnL    float64 `json:"pnl"`
}

// StressTestResult is the stress test tool output
type StressTestResult struct {
	Scenario    Scenario        `json:"scenario"`
	TotalBefore float64         `json:"totalBefore"`
	TotalAfter  float64         `json:"totalAfter"`
	PnL         float64         `json:"pnl"`
	PerPosition []PositionShock `json:"perPosition"`
}

// StressTest applies a deterministic sector shock
func StressTest() tools.Tool {
	return tools.Define(StressTestName,
		"Deterministic stress testing: apply a sector shock to positions.",
		tools.LevelUser,
		validateStressTest,
		ComputeStressTest,
	)
}

func validateStressTest(in *StressTestInput) error {
	var v domain.Violations
	for i, p := range in.Positions {
		field := fmt.Sprintf("positions[%d]", i)
		v.Check(p.Symbol != "", field+".symbol", "is required")
		v.Check(p.Sector != "", field+".sector", "is required")
		v.Finite(p.MarketValue, field+".marketValue")
		v.Check(p.MarketValue >= 0, field+".marketValue", "must be non-negative")
		v.Check(utils.IsFinite(p.MarketValue*(1+in.Scenario.ShockPct)), field+".marketValue", "shocked value must be a finite number")
	}
	v.Check(in.Scenario.Sector != "", "scenario.sector", "is required")
	v.Finite(in.Scenario.ShockPct, "scenario.shockPct")
	return v.Err()
}

// ComputeStressTest shocks positions whose sector equals the scenario sector,
// ignoring case. No partial matching.
func ComputeStressTest(in StressTestInput) (StressTestResult, error) {
	result := StressTestResult{
		Scenario:    in.Scenario,
		PerPosition: make([]PositionShock, 0, len(in.Positions)),
	}

	for _, p := range in.Positions {
		shock := 0.0
		if strings.EqualFold(p.Sector, in.Scenario.Sector) {
			shock = in.Scenario.ShockPct
		}
		after := p.MarketValue * (1 + shock)

		result.TotalBefore += p.MarketValue
		result.TotalAfter += after
		result.PerPosition = append(result.PerPosition, PositionShock{
			Symbol: p.Symbol,
			Sector: p.Sector,
			Before: p.MarketValue,
			After:  after,
			PnL:    after - p.MarketValue,
		})
	}
	result.PnL = result.TotalAfter - result.TotalBefore

	if err := finiteResult("positions", result.TotalBefore, result.TotalAfter, result.PnL); err != nil {
		return StressTestResult{}, err
	}
	return result, nil
}
