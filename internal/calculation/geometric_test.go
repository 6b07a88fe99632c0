package calculation

import (
	"errors"
	"math"
	"testing"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometricMean_KnownValues(t *testing.T) {
	tests := []struct {
		name   string
		ratios []float64
		want   float64
	}{
		{"three ratios", []float64{0.9, 0.8, 0.5}, math.Cbrt(0.9 * 0.8 * 0.5)},
		{"four ratios", []float64{0.82, 0.82, 0.73, 0.59}, math.Pow(0.82*0.82*0.73*0.59, 0.25)},
		{"singleton", []float64{0.7364}, 0.7364},
		{"identical", []float64{0.6, 0.6, 0.6, 0.6}, 0.6},
		{"perfect", []float64{1, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GeometricMean(tt.ratios)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	got, err := GeometricMean([]float64{0.9, 0.8, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.7114, got, 0.001)

	got, err = GeometricMean([]float64{0.82, 0.82, 0.73, 0.59})
	require.NoError(t, err)
	assert.InDelta(t, 0.7336, got, 0.001)
}

func TestGeometricMean_ZeroDominates(t *testing.T) {
	got, err := GeometricMean([]float64{1, 0.99, 0, 0.95})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got, "any zero ratio yields exactly 0")

	logWealth, err := ExpectedLogWealth([]float64{0.9, 0})
	require.NoError(t, err)
	assert.True(t, math.IsInf(logWealth, -1))
}

func TestGeometricMean_NegativeIsRuin(t *testing.T) {
	_, err := GeometricMean([]float64{0.9, 0.8, -0.4})
	require.Error(t, err)

	var ruin *domain.RuinScenarioError
	require.True(t, errors.As(err, &ruin))
	assert.Equal(t, 2, ruin.Index)
	assert.InDelta(t, -0.4, ruin.Ratio, 1e-12)
	assert.True(t, errors.Is(err, domain.ErrRuinScenario))
}

func TestGeometricMean_RuinBeatsZero(t *testing.T) {
	_, err := GeometricMean([]float64{0, -0.1})
	assert.ErrorIs(t, err, domain.ErrRuinScenario)
}

func TestGeometricMean_Empty(t *testing.T) {
	_, err := GeometricMean(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = GeometricMean([]float64{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestGeometricMean_NeverExceedsArithmeticMean(t *testing.T) {
	samples := [][]float64{
		{0.9, 0.8, 0.5},
		{0.82, 0.82, 0.73, 0.59},
		{0.99, 0.01},
		{0.5},
		{0.7, 0.7, 0.7},
		{0.95, 0.9, 0.85, 0.3, 0.1, 0.62},
	}
	for _, ratios := range samples {
		gm, err := GeometricMean(ratios)
		require.NoError(t, err)
		assert.LessOrEqual(t, gm, ArithmeticMean(ratios)+1e-12, "AM-GM for %v", ratios)
	}
}

func TestGeometricMean_IsLogOfExpectedLogWealth(t *testing.T) {
	ratios := []float64{0.82, 0.82, 0.73, 0.59}
	gm, err := GeometricMean(ratios)
	require.NoError(t, err)
	logWealth, err := ExpectedLogWealth(ratios)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(gm), logWealth, 1e-12)
}

func TestWeightedGeometricMean(t *testing.T) {
	ratios := []float64{0.9, 0.8, 0.5}

	uniform, err := WeightedGeometricMean(ratios, []float64{0.2, 0.2, 0.2})
	require.NoError(t, err)
	equal, err := GeometricMean(ratios)
	require.NoError(t, err)
	assert.InDelta(t, equal, uniform, 1e-12, "uniform weights reduce to equal weighting")

	skewed, err := WeightedGeometricMean(ratios, []float64{0.7, 0.25, 0.05})
	require.NoError(t, err)
	assert.Greater(t, skewed, equal, "down-weighting the worst scenario raises the score")

	ignored, err := WeightedGeometricMean([]float64{0.9, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, ignored, 1e-12, "zero-weight scenarios do not participate")
}

func TestWeightedGeometricMean_InvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
	}{
		{"length mismatch", []float64{1}},
		{"negative", []float64{1, -1}},
		{"all zero", []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WeightedGeometricMean([]float64{0.5, 0.6}, tt.weights)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestArithmeticMean(t *testing.T) {
	assert.Equal(t, 0.0, ArithmeticMean(nil))
	assert.InDelta(t, 0.7333, ArithmeticMean([]float64{0.9, 0.8, 0.5}), 0.0001)
}
