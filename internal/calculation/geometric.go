package calculation

import (
	"math"

	"github.com/rgehrsitz/planscore/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// GeometricMean returns exp(mean(log r)) over the ratios with equal weight.
//
// A negative ratio is a RuinScenarioError carrying its index. Otherwise any
// zero ratio yields exactly 0. An empty slice is a ConfigurationError.
func GeometricMean(ratios []float64) (float64, error) {
	return WeightedGeometricMean(ratios, nil)
}

// WeightedGeometricMean is GeometricMean with per-ratio log weights. Weights
// need not sum to 1; nil means equal weight. Zero-weight ratios are ignored.
func WeightedGeometricMean(ratios, weights []float64) (float64, error) {
	logMean, err := weightedLogMean(ratios, weights)
	if err != nil {
		return 0, err
	}
	if math.IsInf(logMean, -1) {
		return 0, nil
	}
	return math.Exp(logMean), nil
}

// ExpectedLogWealth is the equal-weight mean of log ratios, -Inf when any
// ratio is zero. It is the log of the geometric mean.
func ExpectedLogWealth(ratios []float64) (float64, error) {
	return weightedLogMean(ratios, nil)
}

// ArithmeticMean is reported alongside the geometric mean; it is never
// smaller and ignores the tail the geometric mean is sensitive to.
func ArithmeticMean(ratios []float64) float64 {
	if len(ratios) == 0 {
		return 0
	}
	return stat.Mean(ratios, nil)
}

func weightedLogMean(ratios, weights []float64) (float64, error) {
	const op = "geometric_mean"

	if len(ratios) == 0 {
		return 0, domain.NewConfigurationError(op, "at least one ratio is required")
	}
	if weights != nil && len(weights) != len(ratios) {
		return 0, domain.NewConfigurationError(op, "got %d weights for %d ratios", len(weights), len(ratios))
	}

	for i, r := range ratios {
		if r < 0 {
			return 0, &domain.RuinScenarioError{Index: i, Ratio: r}
		}
	}

	logs := make([]float64, 0, len(ratios))
	var w []float64
	if weights != nil {
		w = make([]float64, 0, len(weights))
	}
	for i, r := range ratios {
		if weights != nil {
			if weights[i] < 0 {
				return 0, domain.NewConfigurationError(op, "weight %d is negative", i)
			}
			if weights[i] == 0 {
				continue
			}
			w = append(w, weights[i])
		}
		if r == 0 {
			return math.Inf(-1), nil
		}
		logs = append(logs, math.Log(r))
	}
	if len(logs) == 0 {
		return 0, domain.NewConfigurationError(op, "all weights are zero")
	}
	return stat.Mean(logs, w), nil
}
