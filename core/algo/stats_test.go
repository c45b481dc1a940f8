package algo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		mean   float64
		stdDev float64
	}{
		{"empty", []float64{}, 0, 0},
		{"single", []float64{4}, 4, 0},
		{"constant", []float64{3, 3, 3}, 3, 0},
		{"spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.mean, Mean(tt.values), 1e-9)
			assert.InDelta(t, tt.stdDev, StdDev(tt.values), 1e-9)
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 0.25, Clamp01(0.25))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 1.0, Clamp01(math.Inf(1)))
}

func TestSafeFloat(t *testing.T) {
	assert.Equal(t, 0.0, SafeFloat(math.NaN()))
	assert.Equal(t, 0.0, SafeFloat(math.Inf(-1)))
	assert.Equal(t, 1.5, SafeFloat(1.5))
}

func TestVariationConfidence(t *testing.T) {
	conf, ok := VariationConfidence([]float64{10, 10, 10})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, conf, 1e-9)

	conf, ok = VariationConfidence([]float64{5, 15})
	assert.True(t, ok)
	assert.InDelta(t, 1/(1+0.5), conf, 1e-9)

	conf, ok = VariationConfidence([]float64{-1, 1})
	assert.False(t, ok)
	assert.Equal(t, 0.5, conf)
}

func TestTail(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	assert.Equal(t, []float64{3, 4}, Tail(values, 2))
	assert.Equal(t, values, Tail(values, 10))
	assert.Empty(t, Tail(values, 0))
}
