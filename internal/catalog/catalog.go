// Package catalog holds a versioned reference set of 2026 Covered California
// plans for a San Francisco couple, age 35, without subsidies. Nothing here is
// applied implicitly; callers reference entries by key.
package catalog

import (
	"sort"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// Version identifies the catalog figures
const Version = "2026.1"

// Entry is one catalog plan and the key it is referenced by
type Entry struct {
	Key  string
	Plan domain.MedicalPlan
}

// ReferenceProfile is the household the catalog figures were gathered for:
// $240k gross, 30% effective tax, $80k baseline spend, $88k disposable.
func ReferenceProfile() domain.FinancialProfile {
	return domain.FinancialProfile{
		GrossIncome:   decimal.NewFromInt(240000),
		TaxRate:       decimal.RequireFromString("0.30"),
		BaselineSpend: decimal.NewFromInt(80000),
	}
}

// ResearchTiers is the post-stabilization tier model from the 2026 research:
// most waiver-signed stays land near $15k, with a 2% tail at $75k.
func ResearchTiers() *domain.PostStabilizationTierModel {
	m, err := domain.NewPostStabilizationTierModel([]domain.Tier{
		{Name: "best", Exposure: decimal.NewFromInt(3000), Probability: decimal.RequireFromString("0.30")},
		{Name: "expected", Exposure: decimal.NewFromInt(15000), Probability: decimal.RequireFromString("0.50")},
		{Name: "moderate_worst", Exposure: decimal.NewFromInt(35000), Probability: decimal.RequireFromString("0.18")},
		{Name: "catastrophic", Exposure: decimal.NewFromInt(75000), Probability: decimal.RequireFromString("0.02")},
	}, decimal.NewFromInt(1500), decimal.RequireFromString("0.50"))
	if err != nil {
		panic(err)
	}
	return m
}

type planFigures struct {
	key       string
	name      string
	network   domain.NetworkType
	premium   int64
	oopMax    int64
	minorOOP  int64
	oonCapped bool
}

var figures = []planFigures{
	{key: "kaiser_gold_hmo", name: "Kaiser Gold HMO", network: domain.NetworkHMO, premium: 18456, oopMax: 18400, minorOOP: 400},
	{key: "kaiser_platinum_hmo", name: "Kaiser Platinum HMO", network: domain.NetworkHMO, premium: 19824, oopMax: 10000, minorOOP: 200},
	{key: "blue_shield_trio_gold_hmo", name: "Blue Shield Trio Gold HMO", network: domain.NetworkHMO, premium: 18600, oopMax: 18400, minorOOP: 400},
	{key: "blue_shield_trio_platinum_hmo", name: "Blue Shield Trio Platinum HMO", network: domain.NetworkHMO, premium: 21672, oopMax: 10000, minorOOP: 200},
	{key: "blue_shield_gold_80_ppo", name: "Blue Shield Gold 80 PPO", network: domain.NetworkPPO, premium: 27168, oopMax: 18400, minorOOP: 400, oonCapped: true},
	{key: "blue_shield_platinum_90_ppo", name: "Blue Shield Platinum 90 PPO", network: domain.NetworkPPO, premium: 36936, oopMax: 10000, minorOOP: 200, oonCapped: true},
}

func (f planFigures) plan() domain.MedicalPlan {
	var rules domain.NetworkRules
	if f.oonCapped {
		rules = domain.PPONetwork{
			Tiers:          ResearchTiers(),
			OONDeductible:  decimal.NewFromInt(5500),
			OONCoinsurance: decimal.RequireFromString("0.50"),
			OONOOPMax:      decimal.NewFromInt(50000), // $25k per person
		}
	} else {
		rules = domain.ClosedNetwork{Network: f.network, Tiers: ResearchTiers()}
	}
	return domain.MedicalPlan{
		Name:                      f.name,
		AnnualPremium:             decimal.NewFromInt(f.premium),
		InNetworkOOPMax:           decimal.NewFromInt(f.oopMax),
		ExpectedMinorOOP:          decimal.NewFromInt(f.minorOOP),
		EmergencyAtInNetworkRates: true,
		Network:                   rules,
	}
}

// Entries returns every catalog plan in catalog order
func Entries() []Entry {
	entries := make([]Entry, 0, len(figures))
	for _, f := range figures {
		entries = append(entries, Entry{Key: f.key, Plan: f.plan()})
	}
	return entries
}

// Keys returns the catalog keys, sorted
func Keys() []string {
	keys := make([]string, 0, len(figures))
	for _, f := range figures {
		keys = append(keys, f.key)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns a fresh copy of the plan stored under key
func Lookup(key string) (domain.MedicalPlan, error) {
	for _, f := range figures {
		if f.key == key {
			return f.plan(), nil
		}
	}
	return domain.MedicalPlan{}, domain.NewConfigurationError("catalog_lookup", "no catalog plan %q in catalog %s", key, Version)
}

// DeltaDental is the reference dental add-on
func DeltaDental() *domain.DentalPlan {
	return &domain.DentalPlan{Name: "Delta Dental PPO", AnnualPremium: decimal.NewFromInt(800), ExpectedOOP: decimal.NewFromInt(200)}
}

// VSPVision is the reference vision add-on
func VSPVision() *domain.VisionPlan {
	return &domain.VisionPlan{Name: "VSP Vision", AnnualPremium: decimal.NewFromInt(300), ExpectedOOP: decimal.NewFromInt(50)}
}

// Bundles pairs every catalog plan with the reference add-ons
func Bundles() []domain.PlanBundle {
	entries := Entries()
	bundles := make([]domain.PlanBundle, 0, len(entries))
	for _, e := range entries {
		bundles = append(bundles, domain.PlanBundle{Medical: e.Plan, Dental: DeltaDental(), Vision: VSPVision()})
	}
	return bundles
}
