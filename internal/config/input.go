package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rgehrsitz/planscore/internal/catalog"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/rgehrsitz/planscore/internal/scenario"
	"gopkg.in/yaml.v3"
)

// Household is a validated household document, ready to compare
type Household struct {
	Profile domain.FinancialProfile
	Bundles []domain.PlanBundle
	Set     *domain.ScenarioSet
	Policy  calculation.Policy
	Source  string
}

// InputParser handles parsing of household configuration files
type InputParser struct {
	Overrides EnvOverrides // applied to the household before validation
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a household document from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a YAML household document
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.Overrides.Apply(&config.Household)

	// Validate the configuration
	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadHousehold loads, validates and builds a household document
func (ip *InputParser) LoadHousehold(filename string) (*Household, error) {
	config, err := ip.LoadFromFile(filename)
	if err != nil {
		return nil, err
	}
	household, err := ip.Build(config)
	if err != nil {
		return nil, err
	}
	household.Source = filename
	return household, nil
}

// ValidateConfiguration validates the loaded configuration by building it
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := config.Household.Validate(); err != nil {
		return fmt.Errorf("household validation failed: %w", err)
	}
	_, err := ip.Build(config)
	return err
}

// Build converts a document into the profile, bundles, scenario set and
// policy a comparison runs on.
func (ip *InputParser) Build(config *domain.Configuration) (*Household, error) {
	bundles, err := ip.buildBundles(config)
	if err != nil {
		return nil, err
	}
	set, err := ip.buildScenarioSet(&config.ScenarioSet, bundles)
	if err != nil {
		return nil, fmt.Errorf("scenario set validation failed: %w", err)
	}
	for i := range bundles {
		if _, err := set.Resolve(&bundles[i]); err != nil {
			return nil, &domain.ConfigurationError{
				Operation: "validate_scenario_set",
				Message:   fmt.Sprintf("scenario set %q cannot be resolved for plan %q", set.Name(), bundles[i].Name()),
				Cause:     err,
			}
		}
	}
	policy, err := ip.buildPolicy(&config.Policy)
	if err != nil {
		return nil, fmt.Errorf("policy validation failed: %w", err)
	}
	return &Household{
		Profile: config.Household,
		Bundles: bundles,
		Set:     set,
		Policy:  policy,
	}, nil
}

func (ip *InputParser) buildBundles(config *domain.Configuration) ([]domain.PlanBundle, error) {
	if len(config.Plans) == 0 {
		return nil, domain.NewConfigurationError("validate_plans", "no plans provided")
	}

	seen := make(map[string]bool, len(config.Plans))
	bundles := make([]domain.PlanBundle, 0, len(config.Plans))
	for i := range config.Plans {
		plan, err := ip.buildPlan(&config.Plans[i])
		if err != nil {
			return nil, fmt.Errorf("plan %d validation failed: %w", i, err)
		}
		if seen[plan.Name] {
			return nil, domain.NewConfigurationError("validate_plans", "duplicate plan name %q", plan.Name)
		}
		seen[plan.Name] = true

		bundle := domain.PlanBundle{
			Medical: *plan,
			Dental:  config.AddOns.Dental,
			Vision:  config.AddOns.Vision,
		}
		if err := bundle.Validate(); err != nil {
			return nil, fmt.Errorf("plan %d validation failed: %w", i, err)
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

// buildPlan resolves a catalog reference or builds the plan spelled out in
// the document. A catalog plan may override its name and premium.
func (ip *InputParser) buildPlan(doc *domain.PlanDoc) (*domain.MedicalPlan, error) {
	if doc.Catalog == "" {
		return doc.MedicalPlan()
	}

	plan, err := catalog.Lookup(doc.Catalog)
	if err != nil {
		return nil, err
	}
	if doc.Name != "" {
		plan.Name = doc.Name
	}
	if doc.AnnualPremium != nil {
		plan.AnnualPremium = *doc.AnnualPremium
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (ip *InputParser) buildScenarioSet(doc *domain.ScenarioSetDoc, bundles []domain.PlanBundle) (*domain.ScenarioSet, error) {
	switch {
	case doc.Standard != "" && len(doc.Scenarios) > 0:
		return nil, domain.NewConfigurationError("validate_scenario_set", "use either a standard set or custom scenarios, not both")
	case doc.Standard != "":
		tiers := bundles[0].Medical.Network.PostStabilization()
		if doc.PostStabilization != nil {
			if err := checkTierNamesOnly(doc.PostStabilization); err != nil {
				return nil, err
			}
			var err error
			if tiers, err = doc.PostStabilization.TierModel(); err != nil {
				return nil, err
			}
		}
		return scenario.Standard(doc.Standard, tiers)
	case len(doc.Scenarios) > 0:
		name := doc.Name
		if name == "" {
			name = "custom"
		}
		return domain.NewScenarioSet(name, doc.Version, doc.Scenarios)
	}
	return nil, domain.NewConfigurationError("validate_scenario_set", "scenario_set needs a standard version (available: %v) or a list of scenarios", scenario.Versions())
}

// checkTierNamesOnly rejects dollar figures on a standard set's tier model.
// The set takes tier names and probabilities from it; every plan resolves the
// exposures from its own model.
func checkTierNamesOnly(doc *domain.TierModelDoc) error {
	const op = "validate_scenario_set"
	if !doc.GroundAmbulanceExposure.IsZero() {
		return domain.NewConfigurationError(op, "post_stabilization.ground_ambulance_exposure is taken from each plan; leave it unset")
	}
	for _, t := range doc.Tiers {
		if !t.Exposure.IsZero() {
			return domain.NewConfigurationError(op, "post_stabilization tier %q: exposure is taken from each plan; leave it unset", t.Name)
		}
	}
	return nil
}

func (ip *InputParser) buildPolicy(doc *domain.PolicyDoc) (calculation.Policy, error) {
	ruin, err := calculation.ParseRuinPolicy(doc.Ruin)
	if err != nil {
		return calculation.Policy{}, err
	}
	weighting, err := calculation.ParseWeighting(doc.Weighting)
	if err != nil {
		return calculation.Policy{}, err
	}
	return calculation.Policy{Ruin: ruin, Weighting: weighting}, nil
}
