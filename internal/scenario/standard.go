package scenario

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// StandardV2026_1 names the 2026 standard scenario set
const StandardV2026_1 = "2026.1"

// Reference probabilities of the 2026.1 set. They document how often each
// outcome is expected; equal-weight scoring ignores them.
var (
	probNoUse        = decimal.RequireFromString("0.70")
	probMinorUse     = decimal.RequireFromString("0.25")
	probCatInNetwork = decimal.RequireFromString("0.03")
	probCatOON       = decimal.RequireFromString("0.02")
)

// Builder expands a tier model into a scenario set
type Builder func(tiers *domain.PostStabilizationTierModel) (*domain.ScenarioSet, error)

var standardSets = map[string]Builder{
	StandardV2026_1: buildV2026_1,
}

// Versions lists the available standard set versions
func Versions() []string {
	versions := make([]string, 0, len(standardSets))
	for v := range standardSets {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// Standard builds the named standard set. There is no default version; the
// caller must pick one.
func Standard(version string, tiers *domain.PostStabilizationTierModel) (*domain.ScenarioSet, error) {
	build, ok := standardSets[version]
	if !ok {
		return nil, domain.NewConfigurationError("standard_scenario_set", "unknown standard scenario set %q (available: %v)", version, Versions())
	}
	if tiers == nil {
		return nil, domain.NewConfigurationError("standard_scenario_set", "a post-stabilization tier model is required")
	}
	return build(tiers)
}

// buildV2026_1 emits no_use, minor_use, cat_in_network and one cat_oon_<tier>
// scenario per post-stabilization tier. The OON catastrophe is split across
// tiers so that the worst tier keeps its own ratio in the geometric mean.
// Each cat_oon scenario carries probCatOON x tier probability; the model's
// waiver probability does not enter.
func buildV2026_1(tiers *domain.PostStabilizationTierModel) (*domain.ScenarioSet, error) {
	scenarios := []domain.Scenario{
		{Name: "no_use", Probability: probNoUse},
		{Name: "minor_use", Probability: probMinorUse, MedicalOOP: domain.FromPlan(domain.SourceExpectedMinorOOP)},
		{Name: "cat_in_network", Probability: probCatInNetwork, MedicalOOP: domain.FromPlan(domain.SourceInNetworkOOPMax)},
	}
	for _, t := range tiers.Tiers() {
		scenarios = append(scenarios, domain.Scenario{
			Name:        OONScenarioName(t.Name),
			Probability: probCatOON.Mul(t.Probability),
			MedicalOOP:  domain.FromPlan(domain.SourceEmergencyOOP),
			ExtraOON:    domain.PostStabilizationTier(t.Name),
		})
	}
	return domain.NewScenarioSet("standard", StandardV2026_1, scenarios)
}

// OONScenarioName is the scenario name used for a post-stabilization tier
func OONScenarioName(tier string) string {
	return fmt.Sprintf("cat_oon_%s", tier)
}
