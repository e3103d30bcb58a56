package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
)

const (
	// MinReturns is the shortest series the z-score tool accepts
	MinReturns = 20
	// DefaultZThreshold applies when the input omits a threshold
	DefaultZThreshold = 3.0
)

// ZScoreInput is the z-score anomaly tool input
type ZScoreInput struct {
	Symbol    string    `json:"symbol"`
	Returns   []float64 `json:"returns"`
	Threshold *float64  `json:"threshold,omitempty"`
}

// ZScoreResult is the z-score anomaly tool output
type ZScoreResult struct {
	Symbol    string  `json:"symbol"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stdev"`
	Latest    float64 `json:"latest"`
	Z         float64 `json:"z"`
	Threshold float64 `json:"threshold"`
	IsAnomaly bool    `json:"isAnomaly"`
}

// ZScoreAnomaly flags the latest return when it deviates from the series
func ZScoreAnomaly() tools.Tool {
	return tools.Define(ZScoreAnomalyName,
		"Deterministic z-score anomaly detection on return series.",
		tools.LevelUser,
		validateZScore,
		ComputeZScore,
	)
}

func validateZScore(in *ZScoreInput) error {
	if in.Threshold == nil {
		threshold := DefaultZThreshold
		in.Threshold = &threshold
	}

	var v domain.Violations
	v.Check(in.Symbol != "", "symbol", "is required")
	v.Check(len(in.Returns) >= MinReturns, "returns", "needs at least 20 observations")
	for _, r := range in.Returns {
		v.Finite(r, "returns")
	}
	v.Finite(*in.Threshold, "threshold")
	v.Check(*in.Threshold > 0, "threshold", "must be positive")
	return v.Err()
}

// ComputeZScore scores the last observation against the sample mean and
// sample standard deviation (n-1) of the whole series. A zero deviation
// gives z = 0.
func ComputeZScore(in ZScoreInput) (ZScoreResult, error) {
	threshold := DefaultZThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	if len(in.Returns) < 2 {
		return ZScoreResult{}, domain.NewValidationError("returns: needs at least 20 observations", nil)
	}

	mean, sd := stat.MeanStdDev(in.Returns, nil)
	if constant(in.Returns) {
		// Summation error would otherwise leave a tiny non-zero deviation
		mean, sd = in.Returns[0], 0
	}
	latest := in.Returns[len(in.Returns)-1]

	z := 0.0
	if sd != 0 {
		z = (latest - mean) / sd
	}

	if err := finiteResult("returns", mean, sd, z); err != nil {
		return ZScoreResult{}, err
	}

	return ZScoreResult{
		Symbol:    in.Symbol,
		Mean:      mean,
		StdDev:    sd,
		Latest:    latest,
		Z:         z,
		Threshold: threshold,
		IsAnomaly: math.Abs(z) >= threshold,
	}, nil
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
