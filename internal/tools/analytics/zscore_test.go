package analytics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/domain"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func threshold(v float64) *float64 { return &v }

func TestComputeZScore_ZeroStdDevNeverFlags(t *testing.T) {
	for _, value := range []float64{0, 0.1, -0.0123, 5} {
		for _, th := range []float64{0.0001, 1, 3} {
			out, err := ComputeZScore(ZScoreInput{
				Symbol:    "FLAT",
				Returns:   series(25, func(int) float64 { return value }),
				Threshold: threshold(th),
			})
			require.NoError(t, err)
			assert.Equal(t, 0.0, out.StdDev)
			assert.Equal(t, 0.0, out.Z)
			assert.False(t, out.IsAnomaly, "value=%v threshold=%v", value, th)
		}
	}
}

func TestComputeZScore_FlagsOutlier(t *testing.T) {
	returns := series(20, func(i int) float64 {
		if i%2 == 0 {
			return 0.01
		}
		return -0.01
	})
	returns = append(returns, 0.5)

	out, err := ComputeZScore(ZScoreInput{Symbol: "AAPL", Returns: returns})
	require.NoError(t, err)

	assert.Equal(t, DefaultZThreshold, out.Threshold)
	assert.Equal(t, 0.5, out.Latest)
	assert.True(t, out.Z > 3)
	assert.True(t, out.IsAnomaly)
}

func TestComputeZScore_SampleStdDev(t *testing.T) {
	returns := series(20, func(i int) float64 { return float64(i + 1) })

	out, err := ComputeZScore(ZScoreInput{Symbol: "SEQ", Returns: returns})
	require.NoError(t, err)

	// 1..20: mean 10.5, sample variance 35
	assert.InDelta(t, 10.5, out.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(35), out.StdDev, 1e-12)
	assert.InDelta(t, 9.5/math.Sqrt(35), out.Z, 1e-12)
	assert.False(t, out.IsAnomaly)
}

func TestZScore_Validation(t *testing.T) {
	tool := ZScoreAnomaly()

	_, err := tool.Validate(ZScoreInput{Symbol: "AAPL", Returns: series(19, func(int) float64 { return 1 })})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = tool.Validate(ZScoreInput{Symbol: "AAPL", Returns: series(20, func(int) float64 { return 1 }), Threshold: threshold(-1)})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	in, err := tool.Validate([]byte(`{"symbol":"AAPL","returns":[1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,2]}`))
	require.NoError(t, err)
	out, err := tool.Execute(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultZThreshold, out.(ZScoreResult).Threshold)
}

func TestComputeZScore_RejectsOverflowingMoments(t *testing.T) {
	returns := series(20, func(i int) float64 {
		if i%2 == 0 {
			return 1e308
		}
		return 9e307
	})

	_, err := ComputeZScore(ZScoreInput{Symbol: "HUGE", Returns: returns})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
