package calculation

import (
	"math"
	"strings"

	"github.com/rgehrsitz/planscore/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// RuinPolicy decides what a negative wealth ratio means
type RuinPolicy string

const (
	RuinFail      RuinPolicy = "fail"  // the plan fails with a RuinScenarioError
	RuinClampZero RuinPolicy = "clamp" // the ratio is treated as 0, scoring the plan 0
)

// Weighting decides how scenarios are weighted in the log mean
type Weighting string

const (
	EqualWeight       Weighting = "equal"
	ProbabilityWeight Weighting = "probability"
)

// Policy configures aggregation. The zero value behaves like DefaultPolicy.
type Policy struct {
	Ruin      RuinPolicy `yaml:"ruin" json:"ruin"`
	Weighting Weighting  `yaml:"weighting" json:"weighting"`
}

// DefaultPolicy fails on ruin and weights every scenario equally
func DefaultPolicy() Policy {
	return Policy{Ruin: RuinFail, Weighting: EqualWeight}
}

// ParseRuinPolicy parses "fail" or "clamp"; empty means fail
func ParseRuinPolicy(s string) (RuinPolicy, error) {
	switch RuinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RuinFail:
		return RuinFail, nil
	case RuinClampZero:
		return RuinClampZero, nil
	}
	return "", domain.NewConfigurationError("parse_ruin_policy", "unknown ruin policy %q (valid: fail, clamp)", s)
}

// ParseWeighting parses "equal" or "probability"; empty means equal
func ParseWeighting(s string) (Weighting, error) {
	switch Weighting(strings.ToLower(strings.TrimSpace(s))) {
	case "", EqualWeight:
		return EqualWeight, nil
	case ProbabilityWeight:
		return ProbabilityWeight, nil
	}
	return "", domain.NewConfigurationError("parse_weighting", "unknown weighting %q (valid: equal, probability)", s)
}

func (p Policy) normalized() Policy {
	if p.Ruin == "" {
		p.Ruin = RuinFail
	}
	if p.Weighting == "" {
		p.Weighting = EqualWeight
	}
	return p
}

// Score is the aggregate of one plan's ratio row
type Score struct {
	GeometricMean     float64
	ExpectedLogWealth float64 // -Inf when the geometric mean is 0
	ArithmeticMean    float64
	WorstRatio        float64
	WorstScenario     string
	Clamped           []string // scenarios whose negative ratio was clamped to 0
}

// GeometricMeanWealth is the certainty-equivalent dollar amount: GM x D
func (s *Score) GeometricMeanWealth(row *Row) float64 {
	return s.GeometricMean * row.DisposableIncome.InexactFloat64()
}

// Aggregator reduces a ratio row to a Score under a Policy
type Aggregator struct {
	Policy Policy
	Logger Logger
}

// NewAggregator creates an aggregator; the zero Policy means DefaultPolicy
func NewAggregator(policy Policy) *Aggregator {
	return &Aggregator{Policy: policy.normalized(), Logger: NopLogger{}}
}

// SetLogger replaces the aggregator's logger; nil restores the no-op logger
func (a *Aggregator) SetLogger(l Logger) {
	if l == nil {
		a.Logger = NopLogger{}
		return
	}
	a.Logger = l
}

// Score aggregates a row. Under RuinFail a negative ratio returns a
// RuinScenarioError naming the plan and scenario.
func (a *Aggregator) Score(row *Row) (*Score, error) {
	const op = "aggregate"
	policy := a.Policy.normalized()

	if row == nil || len(row.Ratios) == 0 {
		return nil, domain.NewConfigurationError(op, "ratio row is empty")
	}

	ratios := make([]float64, len(row.Ratios))
	copy(ratios, row.Ratios)

	score := &Score{}
	for i, r := range ratios {
		if r >= 0 {
			continue
		}
		name := scenarioName(row, i)
		switch policy.Ruin {
		case RuinClampZero:
			a.Logger.Warnf("%s: scenario %s ratio %.4f clamped to 0", row.PlanName, name, r)
			ratios[i] = 0
			score.Clamped = append(score.Clamped, name)
		default:
			return nil, &domain.RuinScenarioError{PlanName: row.PlanName, ScenarioName: name, Index: i, Ratio: r}
		}
	}

	weights, err := a.weights(row, policy)
	if err != nil {
		return nil, err
	}

	logMean, err := weightedLogMean(ratios, weights)
	if err != nil {
		return nil, err
	}
	score.ExpectedLogWealth = logMean
	if !math.IsInf(logMean, -1) {
		score.GeometricMean = math.Exp(logMean)
	}

	if weights == nil {
		score.ArithmeticMean = ArithmeticMean(ratios)
	} else {
		score.ArithmeticMean = floats.Dot(ratios, weights) / floats.Sum(weights)
	}

	worst := floats.MinIdx(row.Ratios)
	score.WorstRatio = row.Ratios[worst]
	score.WorstScenario = scenarioName(row, worst)

	a.Logger.Debugf("%s: gm=%.4f am=%.4f worst=%s(%.4f)",
		row.PlanName, score.GeometricMean, score.ArithmeticMean, score.WorstScenario, score.WorstRatio)
	return score, nil
}

func (a *Aggregator) weights(row *Row, policy Policy) ([]float64, error) {
	if policy.Weighting != ProbabilityWeight {
		return nil, nil
	}
	if len(row.Scenarios) != len(row.Ratios) {
		return nil, domain.NewConfigurationError("aggregate", "probability weighting needs the resolved scenarios of %q", row.PlanName)
	}
	weights := make([]float64, len(row.Scenarios))
	for i, rs := range row.Scenarios {
		weights[i] = rs.Probability.InexactFloat64()
	}
	if floats.Sum(weights) <= 0 {
		return nil, domain.NewConfigurationError("aggregate", "probability weighting needs a positive total probability")
	}
	return weights, nil
}

func scenarioName(row *Row, i int) string {
	if i < len(row.Scenarios) {
		return row.Scenarios[i].Name
	}
	return ""
}
