package sensitivity

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// Parameter is a household or plan input that a sweep varies
type Parameter string

const (
	TaxRate       Parameter = "tax_rate"
	BaselineSpend Parameter = "baseline_spend"
	Premium       Parameter = "premium" // medical premium of one plan
)

// Parameters lists the sweepable parameters
var Parameters = []Parameter{TaxRate, BaselineSpend, Premium}

// ParseParameter parses a parameter name
func ParseParameter(s string) (Parameter, error) {
	p := Parameter(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Parameters {
		if p == known {
			return p, nil
		}
	}
	return "", domain.NewConfigurationError("parse_parameter", "unknown parameter %q (valid: tax_rate, baseline_spend, premium)", s)
}

// IsRate reports whether values are fractions rather than dollars
func (p Parameter) IsRate() bool {
	return p == TaxRate
}

// FormatValue renders a parameter value in its unit
func (p Parameter) FormatValue(v decimal.Decimal) string {
	if p.IsRate() {
		return v.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
	}
	return "$" + v.StringFixed(0)
}

// Sweep describes a one-parameter sweep
type Sweep struct {
	Parameter Parameter       `yaml:"parameter" json:"parameter"`
	Min       decimal.Decimal `yaml:"min" json:"min"`
	Max       decimal.Decimal `yaml:"max" json:"max"`
	Steps     int             `yaml:"steps" json:"steps"`
	Plan      string          `yaml:"plan,omitempty" json:"plan,omitempty"` // required for premium
}

// Validate checks the sweep's range and parameter
func (s *Sweep) Validate() error {
	const op = "validate_sweep"
	if _, err := ParseParameter(string(s.Parameter)); err != nil {
		return err
	}
	if s.Steps < 1 {
		return domain.NewConfigurationError(op, "steps must be at least 1")
	}
	if s.Max.LessThan(s.Min) {
		return domain.NewConfigurationError(op, "max %s is below min %s", s.Max, s.Min)
	}
	if s.Min.IsNegative() {
		return domain.NewConfigurationError(op, "%s cannot be negative", s.Parameter)
	}
	if s.Parameter.IsRate() && s.Max.GreaterThan(decimal.NewFromInt(1)) {
		return domain.NewConfigurationError(op, "%s must be between 0 and 1", s.Parameter)
	}
	if s.Parameter == Premium && s.Plan == "" {
		return domain.NewConfigurationError(op, "a premium sweep needs a plan name")
	}
	return nil
}

// PlanScore is one plan's outcome at one sweep point
type PlanScore struct {
	PlanName string   `json:"planName"`
	Rank     int      `json:"rank,omitempty"`
	Score    *float64 `json:"score"` // nil when the plan was not scored
	Reason   string   `json:"reason,omitempty"`
}

// Point is the comparison outcome at one parameter value
type Point struct {
	Value            decimal.Decimal `json:"value"`
	DisposableIncome decimal.Decimal `json:"disposableIncome"`
	Leader           string          `json:"leader,omitempty"`
	Scores           []PlanScore     `json:"scores"` // in input order
	Error            string          `json:"error,omitempty"`
}

// Score returns the named plan's score at this point
func (p *Point) Score(plan string) (float64, bool) {
	for _, s := range p.Scores {
		if s.PlanName == plan && s.Score != nil {
			return *s.Score, true
		}
	}
	return 0, false
}

// Crossover marks a change of leader between two adjacent points
type Crossover struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	Below decimal.Decimal `json:"below"`
	Above decimal.Decimal `json:"above"`
}

// Analysis is the result of a sweep
type Analysis struct {
	Sweep           Sweep           `json:"sweep"`
	BaseValue       decimal.Decimal `json:"baseValue"`
	Plans           []string        `json:"plans"`
	Points          []Point         `json:"points"`
	Crossovers      []Crossover     `json:"crossovers"`
	Recommendations []string        `json:"recommendations"`
}

// GenerateRecommendations summarizes leader stability across the sweep
func GenerateRecommendations(a *Analysis) []string {
	recommendations := []string{}
	param := a.Sweep.Parameter

	for _, p := range a.Points {
		if p.Error != "" {
			recommendations = append(recommendations,
				fmt.Sprintf("Degenerate: no comparison at %s = %s (%s)", param, param.FormatValue(p.Value), p.Error))
		}
	}

	for _, c := range a.Crossovers {
		recommendations = append(recommendations,
			fmt.Sprintf("Crossover: the best plan changes from %s to %s between %s = %s and %s",
				c.From, c.To, param, param.FormatValue(c.Below), param.FormatValue(c.Above)))
	}

	if len(a.Crossovers) == 0 {
		leader := ""
		for _, p := range a.Points {
			if p.Leader != "" {
				leader = p.Leader
				break
			}
		}
		if leader != "" {
			recommendations = append(recommendations,
				fmt.Sprintf("Stable Leader: %s ranks first across %s %s to %s",
					leader, param, param.FormatValue(a.Sweep.Min), param.FormatValue(a.Sweep.Max)))
		}
	}

	return recommendations
}
