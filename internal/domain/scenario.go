package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExposureSource says where a scenario's out-of-pocket amount comes from
type ExposureSource string

const (
	SourceFixed                     ExposureSource = "fixed"
	SourceInNetworkOOPMax           ExposureSource = "in_network_oop_max"
	SourceExpectedMinorOOP          ExposureSource = "expected_minor_oop"
	SourceEmergencyOOP              ExposureSource = "emergency_oop"
	SourcePostStabilizationTier     ExposureSource = "post_stabilization_tier"
	SourcePostStabilizationExpected ExposureSource = "post_stabilization_expected"
)

// Exposure is an out-of-pocket amount that is either fixed or derived from
// the plan bundle it is evaluated against. The zero value is a fixed $0.
type Exposure struct {
	Source ExposureSource  `yaml:"source,omitempty" json:"source,omitempty"`
	Amount decimal.Decimal `yaml:"amount,omitempty" json:"amount,omitempty"`
	Tier   string          `yaml:"tier,omitempty" json:"tier,omitempty"`
}

// Fixed is a plan-independent exposure
func Fixed(amount decimal.Decimal) Exposure {
	return Exposure{Source: SourceFixed, Amount: amount}
}

// FixedInt is Fixed for whole-dollar amounts
func FixedInt(amount int64) Exposure {
	return Fixed(decimal.NewFromInt(amount))
}

// FromPlan is an exposure read from the plan (OOP max, minor OOP, emergency OOP)
func FromPlan(source ExposureSource) Exposure {
	return Exposure{Source: source}
}

// PostStabilizationTier resolves a named tier under the plan's network rules
func PostStabilizationTier(tier string) Exposure {
	return Exposure{Source: SourcePostStabilizationTier, Tier: tier}
}

// PostStabilizationExpected resolves the expected case across all tiers
func PostStabilizationExpected() Exposure {
	return Exposure{Source: SourcePostStabilizationExpected}
}

// IsPlanRelative reports whether the amount depends on the plan bundle
func (e Exposure) IsPlanRelative() bool {
	return e.Source != "" && e.Source != SourceFixed
}

// Resolve computes the concrete amount for a bundle
func (e Exposure) Resolve(bundle *PlanBundle) (decimal.Decimal, error) {
	switch e.Source {
	case "", SourceFixed:
		return e.Amount, nil
	case SourceInNetworkOOPMax:
		return bundle.Medical.InNetworkOOPMax, nil
	case SourceExpectedMinorOOP:
		return bundle.Medical.ExpectedMinorOOP, nil
	case SourceEmergencyOOP:
		return bundle.Medical.EmergencyOOP(), nil
	case SourcePostStabilizationTier:
		return bundle.ResolveOONExposure(SelectTier(e.Tier))
	case SourcePostStabilizationExpected:
		return bundle.ResolveOONExposure(ExpectedTier())
	}
	return decimal.Zero, NewConfigurationError("resolve_exposure", "unknown exposure source %q", e.Source)
}

func (e Exposure) validate() error {
	switch e.Source {
	case "", SourceFixed:
		if e.Amount.IsNegative() {
			return fmt.Errorf("fixed amount cannot be negative")
		}
	case SourceInNetworkOOPMax, SourceExpectedMinorOOP, SourceEmergencyOOP, SourcePostStabilizationExpected:
	case SourcePostStabilizationTier:
		if e.Tier == "" {
			return fmt.Errorf("post_stabilization_tier requires a tier name")
		}
	default:
		return fmt.Errorf("unknown exposure source %q", e.Source)
	}
	return nil
}

func (e Exposure) String() string {
	switch e.Source {
	case "", SourceFixed:
		return "$" + e.Amount.StringFixed(0)
	case SourcePostStabilizationTier:
		return string(e.Source) + ":" + e.Tier
	}
	return string(e.Source)
}

// Scenario is one possible healthcare outcome for the year. Probability is
// documentation unless a probability-weighted policy is chosen.
type Scenario struct {
	Name        string          `yaml:"name" json:"name"`
	Probability decimal.Decimal `yaml:"probability" json:"probability"`
	MedicalOOP  Exposure        `yaml:"medical_oop" json:"medicalOOP"`
	ExtraOON    Exposure        `yaml:"extra_oon,omitempty" json:"extraOON,omitempty"`
}

// ResolvedScenario is a scenario with its amounts fixed for one plan bundle
type ResolvedScenario struct {
	Name        string          `json:"name"`
	Probability decimal.Decimal `json:"probability"`
	MedicalOOP  decimal.Decimal `json:"medicalOOP"`
	ExtraOON    decimal.Decimal `json:"extraOON"`
}

// TotalOOP is the scenario's medical plus extra OON out-of-pocket
func (rs ResolvedScenario) TotalOOP() decimal.Decimal {
	return rs.MedicalOOP.Add(rs.ExtraOON)
}

// Resolve fixes the scenario's amounts against a bundle
func (s Scenario) Resolve(bundle *PlanBundle) (ResolvedScenario, error) {
	medical, err := s.MedicalOOP.Resolve(bundle)
	if err != nil {
		return ResolvedScenario{}, fmt.Errorf("scenario %q medical OOP: %w", s.Name, err)
	}
	extra, err := s.ExtraOON.Resolve(bundle)
	if err != nil {
		return ResolvedScenario{}, fmt.Errorf("scenario %q extra OON: %w", s.Name, err)
	}
	return ResolvedScenario{
		Name:        s.Name,
		Probability: s.Probability,
		MedicalOOP:  medical,
		ExtraOON:    extra,
	}, nil
}

// ScenarioSet is an ordered, non-empty collection of scenarios. Order does not
// change any score but is kept stable for reproducible output.
type ScenarioSet struct {
	name      string
	version   string
	scenarios []Scenario
}

// NewScenarioSet validates and builds a scenario set
func NewScenarioSet(name, version string, scenarios []Scenario) (*ScenarioSet, error) {
	const op = "new_scenario_set"

	if len(scenarios) == 0 {
		return nil, NewConfigurationError(op, "scenario set %q is empty; at least one scenario is required", name)
	}

	seen := make(map[string]bool, len(scenarios))
	for i, s := range scenarios {
		if s.Name == "" {
			return nil, NewConfigurationError(op, "scenario %d: name is required", i)
		}
		if seen[s.Name] {
			return nil, NewConfigurationError(op, "duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
		if !isFraction(s.Probability) {
			return nil, NewConfigurationError(op, "scenario %q: probability must be between 0 and 1, got %s", s.Name, s.Probability.String())
		}
		if err := s.MedicalOOP.validate(); err != nil {
			return nil, &ConfigurationError{Operation: op, Message: fmt.Sprintf("scenario %q medical_oop", s.Name), Cause: err}
		}
		if err := s.ExtraOON.validate(); err != nil {
			return nil, &ConfigurationError{Operation: op, Message: fmt.Sprintf("scenario %q extra_oon", s.Name), Cause: err}
		}
	}

	copied := make([]Scenario, len(scenarios))
	copy(copied, scenarios)
	return &ScenarioSet{name: name, version: version, scenarios: copied}, nil
}

// Name returns the set's name
func (ss *ScenarioSet) Name() string { return ss.name }

// Version returns the set's version label
func (ss *ScenarioSet) Version() string { return ss.version }

// Len returns the number of scenarios
func (ss *ScenarioSet) Len() int { return len(ss.scenarios) }

// Scenarios returns a copy of the ordered scenarios
func (ss *ScenarioSet) Scenarios() []Scenario {
	out := make([]Scenario, len(ss.scenarios))
	copy(out, ss.scenarios)
	return out
}

// Resolve fixes every scenario against a bundle, preserving order
func (ss *ScenarioSet) Resolve(bundle *PlanBundle) ([]ResolvedScenario, error) {
	resolved := make([]ResolvedScenario, 0, len(ss.scenarios))
	for _, s := range ss.scenarios {
		rs, err := s.Resolve(bundle)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rs)
	}
	return resolved, nil
}
