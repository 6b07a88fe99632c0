package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Configuration is the household document read from YAML
type Configuration struct {
	Household   FinancialProfile `yaml:"household" json:"household"`
	ScenarioSet ScenarioSetDoc   `yaml:"scenario_set" json:"scenarioSet"`
	AddOns      AddOnsDoc        `yaml:"add_ons" json:"addOns"`
	Plans       []PlanDoc        `yaml:"plans" json:"plans"`
	Policy      PolicyDoc        `yaml:"policy" json:"policy"`
}

// ScenarioSetDoc either names a standard set or lists custom scenarios
type ScenarioSetDoc struct {
	Standard  string     `yaml:"standard,omitempty" json:"standard,omitempty"` // e.g. "2026.1"
	Name      string     `yaml:"name,omitempty" json:"name,omitempty"`
	Version   string     `yaml:"version,omitempty" json:"version,omitempty"`
	Scenarios []Scenario `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`

	// PostStabilization names the tiers a standard set enumerates and their
	// probabilities. Exposures stay unset; each plan supplies its own. When
	// omitted the first plan's tier model is used.
	PostStabilization *TierModelDoc `yaml:"post_stabilization,omitempty" json:"postStabilization,omitempty"`
}

// AddOnsDoc holds the dental and vision add-ons applied to every plan
type AddOnsDoc struct {
	Dental *DentalPlan `yaml:"dental,omitempty" json:"dental,omitempty"`
	Vision *VisionPlan `yaml:"vision,omitempty" json:"vision,omitempty"`
}

// PlanDoc is a medical plan as written in YAML. Catalog references a
// reference-catalog entry instead of spelling the plan out.
type PlanDoc struct {
	Catalog string `yaml:"catalog,omitempty" json:"catalog,omitempty"`

	Name             string           `yaml:"name" json:"name"`
	AnnualPremium    *decimal.Decimal `yaml:"annual_premium,omitempty" json:"annualPremium,omitempty"` // nil keeps a catalog plan's premium
	InNetworkOOPMax  decimal.Decimal  `yaml:"in_network_oop_max" json:"inNetworkOOPMax"`
	NetworkType      string           `yaml:"network_type" json:"networkType"`
	Deductible       decimal.Decimal  `yaml:"deductible" json:"deductible"`
	ExpectedMinorOOP decimal.Decimal  `yaml:"expected_minor_oop" json:"expectedMinorOOP"`

	EmergencyAtInNetworkRates *bool `yaml:"emergency_at_in_network_rates,omitempty" json:"emergencyAtInNetworkRates,omitempty"` // default true
	PostStabilizationCovered  bool  `yaml:"post_stabilization_covered,omitempty" json:"postStabilizationCovered,omitempty"`   // HMO/EPO only

	PostStabilization *TierModelDoc `yaml:"post_stabilization,omitempty" json:"postStabilization,omitempty"`
	PPOOutOfNetwork   *PPOOONDoc    `yaml:"ppo_oon,omitempty" json:"ppoOON,omitempty"` // PPO only
}

// TierModelDoc is the YAML form of a PostStabilizationTierModel
type TierModelDoc struct {
	Tiers                   []Tier          `yaml:"tiers" json:"tiers"`
	GroundAmbulanceExposure decimal.Decimal `yaml:"ground_ambulance_exposure" json:"groundAmbulanceExposure"`
	WaiverProbability       decimal.Decimal `yaml:"waiver_probability" json:"waiverProbability"`
}

// PPOOONDoc is the YAML form of a PPO's out-of-network cost-sharing
type PPOOONDoc struct {
	Deductible  decimal.Decimal `yaml:"deductible" json:"deductible"`
	Coinsurance decimal.Decimal `yaml:"coinsurance" json:"coinsurance"`
	OOPMax      decimal.Decimal `yaml:"oop_max" json:"oopMax"`
	BillCapped  bool            `yaml:"bill_capped,omitempty" json:"billCapped,omitempty"` // a bill under the deductible costs the bill
}

// PolicyDoc selects the aggregation policy
type PolicyDoc struct {
	Ruin      string `yaml:"ruin,omitempty" json:"ruin,omitempty"`           // fail | clamp
	Weighting string `yaml:"weighting,omitempty" json:"weighting,omitempty"` // equal | probability
}

// TierModel builds the validated tier model
func (d *TierModelDoc) TierModel() (*PostStabilizationTierModel, error) {
	return NewPostStabilizationTierModel(d.Tiers, d.GroundAmbulanceExposure, d.WaiverProbability)
}

// MedicalPlan converts the document into a validated MedicalPlan. PPO
// cost-sharing on a closed network (or its absence on a PPO) is rejected.
func (d *PlanDoc) MedicalPlan() (*MedicalPlan, error) {
	const op = "build_medical_plan"

	networkType, err := ParseNetworkType(d.NetworkType)
	if err != nil {
		return nil, &ConfigurationError{Operation: op, Message: fmt.Sprintf("plan %q", d.Name), Cause: err}
	}
	if d.PostStabilization == nil {
		return nil, NewConfigurationError(op, "plan %q: post_stabilization is required", d.Name)
	}
	tiers, err := d.PostStabilization.TierModel()
	if err != nil {
		return nil, &ConfigurationError{Operation: op, Message: fmt.Sprintf("plan %q", d.Name), Cause: err}
	}

	var rules NetworkRules
	switch networkType {
	case NetworkPPO:
		if d.PPOOutOfNetwork == nil {
			return nil, NewConfigurationError(op, "plan %q: PPO plans require ppo_oon cost-sharing", d.Name)
		}
		if d.PostStabilizationCovered {
			return nil, NewConfigurationError(op, "plan %q: post_stabilization_covered applies to HMO/EPO plans only", d.Name)
		}
		rules = PPONetwork{
			Tiers:          tiers,
			OONDeductible:  d.PPOOutOfNetwork.Deductible,
			OONCoinsurance: d.PPOOutOfNetwork.Coinsurance,
			OONOOPMax:      d.PPOOutOfNetwork.OOPMax,
			BillCapped:     d.PPOOutOfNetwork.BillCapped,
		}
	default:
		if d.PPOOutOfNetwork != nil {
			return nil, NewConfigurationError(op, "plan %q: ppo_oon is not allowed on %s plans", d.Name, networkType)
		}
		rules = ClosedNetwork{
			Network:                  networkType,
			Tiers:                    tiers,
			PostStabilizationCovered: d.PostStabilizationCovered,
		}
	}

	emergencyInNetwork := true
	if d.EmergencyAtInNetworkRates != nil {
		emergencyInNetwork = *d.EmergencyAtInNetworkRates
	}

	premium := decimal.Zero
	if d.AnnualPremium != nil {
		premium = *d.AnnualPremium
	}

	plan := &MedicalPlan{
		Name:                      d.Name,
		AnnualPremium:             premium,
		InNetworkOOPMax:           d.InNetworkOOPMax,
		Deductible:                d.Deductible,
		ExpectedMinorOOP:          d.ExpectedMinorOOP,
		EmergencyAtInNetworkRates: emergencyInNetwork,
		Network:                   rules,
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// UnmarshalYAML accepts a bare amount ("400"), a bare plan-relative source
// ("in_network_oop_max"), or the full mapping form.
func (e *Exposure) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if amount, err := decimal.NewFromString(value.Value); err == nil {
			*e = Fixed(amount)
			return nil
		}
		source := ExposureSource(value.Value)
		switch source {
		case SourceInNetworkOOPMax, SourceExpectedMinorOOP, SourceEmergencyOOP, SourcePostStabilizationExpected:
			*e = FromPlan(source)
			return nil
		}
		return fmt.Errorf("line %d: %q is neither an amount nor a plan-relative exposure", value.Line, value.Value)
	}

	type plain Exposure
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = Exposure(p)
	return nil
}
