package calculation

import (
	"errors"
	"math"
	"testing"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowOf(plan string, ratios []float64, probabilities ...float64) *Row {
	row := &Row{PlanName: plan, DisposableIncome: decimal.NewFromInt(88000), Ratios: ratios}
	for i := range ratios {
		p := 0.0
		if i < len(probabilities) {
			p = probabilities[i]
		}
		row.Scenarios = append(row.Scenarios, domain.ResolvedScenario{
			Name:        []string{"no_use", "minor_use", "cat_in_network", "cat_oon"}[i%4],
			Probability: decimal.NewFromFloat(p),
		})
	}
	return row
}

func TestParsePolicies(t *testing.T) {
	ruin, err := ParseRuinPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RuinFail, ruin)

	ruin, err = ParseRuinPolicy("Clamp")
	require.NoError(t, err)
	assert.Equal(t, RuinClampZero, ruin)

	_, err = ParseRuinPolicy("ignore")
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	weighting, err := ParseWeighting("probability")
	require.NoError(t, err)
	assert.Equal(t, ProbabilityWeight, weighting)

	_, err = ParseWeighting("median")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewAggregator_ZeroPolicyIsDefault(t *testing.T) {
	agg := NewAggregator(Policy{})
	assert.Equal(t, DefaultPolicy(), agg.Policy)
	assert.IsType(t, NopLogger{}, agg.Logger)
}

func TestAggregator_Score(t *testing.T) {
	agg := NewAggregator(DefaultPolicy())
	row := rowOf("Plan A", []float64{0.82, 0.82, 0.73, 0.59})

	score, err := agg.Score(row)
	require.NoError(t, err)

	assert.InDelta(t, 0.7336, score.GeometricMean, 0.001)
	assert.InDelta(t, math.Log(score.GeometricMean), score.ExpectedLogWealth, 1e-12)
	assert.InDelta(t, 0.74, score.ArithmeticMean, 1e-9)
	assert.Equal(t, 0.59, score.WorstRatio)
	assert.Equal(t, "cat_oon", score.WorstScenario)
	assert.Empty(t, score.Clamped)
	assert.InDelta(t, score.GeometricMean*88000, score.GeometricMeanWealth(row), 1e-6)
}

func TestAggregator_RuinFails(t *testing.T) {
	agg := NewAggregator(DefaultPolicy())
	row := rowOf("Bronze", []float64{0.9, 0.8, -0.4})

	_, err := agg.Score(row)
	require.Error(t, err)

	var ruin *domain.RuinScenarioError
	require.True(t, errors.As(err, &ruin))
	assert.Equal(t, "Bronze", ruin.PlanName)
	assert.Equal(t, "cat_in_network", ruin.ScenarioName)
	assert.Equal(t, 2, ruin.Index)
}

func TestAggregator_RuinClamps(t *testing.T) {
	agg := NewAggregator(Policy{Ruin: RuinClampZero})
	logger := &TestLogger{}
	agg.SetLogger(logger)

	score, err := agg.Score(rowOf("Bronze", []float64{0.9, 0.8, -0.4}))
	require.NoError(t, err)

	assert.Equal(t, 0.0, score.GeometricMean)
	assert.True(t, math.IsInf(score.ExpectedLogWealth, -1))
	assert.Equal(t, []string{"cat_in_network"}, score.Clamped)
	assert.InDelta(t, -0.4, score.WorstRatio, 1e-12, "worst ratio reports the unclamped value")
	assert.Contains(t, logger.messages, "WARN: %s: scenario %s ratio %.4f clamped to 0")
}

func TestAggregator_ProbabilityWeighting(t *testing.T) {
	ratios := []float64{0.95, 0.9, 0.7, 0.4}

	equal, err := NewAggregator(DefaultPolicy()).Score(rowOf("P", ratios, 0.25, 0.25, 0.25, 0.25))
	require.NoError(t, err)

	weighted := NewAggregator(Policy{Weighting: ProbabilityWeight})
	uniform, err := weighted.Score(rowOf("P", ratios, 0.25, 0.25, 0.25, 0.25))
	require.NoError(t, err)
	assert.InDelta(t, equal.GeometricMean, uniform.GeometricMean, 1e-12)

	skewed, err := weighted.Score(rowOf("P", ratios, 0.70, 0.25, 0.03, 0.02))
	require.NoError(t, err)
	assert.Greater(t, skewed.GeometricMean, equal.GeometricMean)
	assert.InDelta(t, 0.95*0.70+0.9*0.25+0.7*0.03+0.4*0.02, skewed.ArithmeticMean, 1e-12)

	_, err = weighted.Score(rowOf("P", ratios))
	assert.ErrorIs(t, err, domain.ErrConfiguration, "all-zero probabilities cannot weight")
}

func TestAggregator_EmptyRow(t *testing.T) {
	_, err := NewAggregator(DefaultPolicy()).Score(&Row{PlanName: "empty"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewAggregator(DefaultPolicy()).Score(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
