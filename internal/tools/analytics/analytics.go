// Package analytics holds the built-in deterministic tools: fee impact,
// allocation, currency normalization, sector stress test and z-score anomaly.
package analytics

import (
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/utils"
)

// Registered tool names
const (
	FeeImpactName             = "portfolio.feeImpact"
	AllocationName            = "portfolio.allocation"
	CurrencyNormalizationName = "portfolio.currencyNormalization"
	StressTestName            = "risk.stressTest"
	ZScoreAnomalyName         = "risk.zScoreAnomaly"
)

// Builtin returns every built-in tool
func Builtin() []tools.Tool {
	return []tools.Tool{
		FeeImpact(),
		Allocation(),
		CurrencyNormalization(),
		StressTest(),
		ZScoreAnomaly(),
	}
}

// NewRegistry builds the process-wide registry of built-in tools
func NewRegistry() (*tools.Registry, error) {
	return tools.NewRegistry(Builtin()...)
}

// finiteResult rejects a computation whose values overflowed. The input was
// valid field by field but cannot be represented in the output.
func finiteResult(field string, values ...float64) error {
	var v domain.Violations
	for _, x := range values {
		v.Check(utils.IsFinite(x), field, "result is not a finite number")
	}
	return v.Err()
}
