package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound8(t *testing.T) {
	assert.Equal(t, 0.3, Round8(0.1+0.2))
	assert.Equal(t, 0.33333333, Round8(1.0/3.0))
	assert.Equal(t, 999.0, Round8(999.0))
	assert.Equal(t, -100.0, Round8(-100.00000000001))
}

func TestBasisPoints(t *testing.T) {
	assert.Equal(t, 1.0, BasisPoints(1000, 10))
	assert.Equal(t, 0.0, BasisPoints(0, 10))
	assert.Equal(t, 0.1234, BasisPoints(123.4, 10))
}

func TestRound8_NonFinitePassesThrough(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, math.IsInf(Round8(math.Inf(1)), 1))
		assert.True(t, math.IsNaN(Round8(math.NaN())))
		assert.True(t, math.IsInf(BasisPoints(math.Inf(-1), 10), -1))
	})
	big := 1e200
	assert.False(t, IsFinite(big*big))
	assert.True(t, IsFinite(1e200))
}
