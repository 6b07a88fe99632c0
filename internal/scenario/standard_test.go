package scenario

import (
	"testing"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tiers(t *testing.T) *domain.PostStabilizationTierModel {
	t.Helper()
	m, err := domain.NewPostStabilizationTierModel([]domain.Tier{
		{Name: "best", Exposure: decimal.NewFromInt(3000), Probability: decimal.RequireFromString("0.30")},
		{Name: "expected", Exposure: decimal.NewFromInt(15000), Probability: decimal.RequireFromString("0.50")},
		{Name: "moderate_worst", Exposure: decimal.NewFromInt(35000), Probability: decimal.RequireFromString("0.18")},
		{Name: "catastrophic", Exposure: decimal.NewFromInt(75000), Probability: decimal.RequireFromString("0.02")},
	}, decimal.NewFromInt(1500), decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	return m
}

func TestStandard_V2026_1(t *testing.T) {
	set, err := Standard(StandardV2026_1, tiers(t))
	require.NoError(t, err)

	assert.Equal(t, "standard", set.Name())
	assert.Equal(t, "2026.1", set.Version())

	names := make([]string, 0, set.Len())
	total := decimal.Zero
	for _, s := range set.Scenarios() {
		names = append(names, s.Name)
		total = total.Add(s.Probability)
	}
	assert.Equal(t, []string{
		"no_use", "minor_use", "cat_in_network",
		"cat_oon_best", "cat_oon_expected", "cat_oon_moderate_worst", "cat_oon_catastrophic",
	}, names)
	assert.True(t, total.Equal(decimal.NewFromInt(1)), "reference probabilities sum to 1, got %s", total)
}

func TestStandard_OONScenariosKeepEveryTier(t *testing.T) {
	set, err := Standard(StandardV2026_1, tiers(t))
	require.NoError(t, err)

	scenarios := set.Scenarios()
	catastrophic := scenarios[len(scenarios)-1]
	assert.Equal(t, domain.FromPlan(domain.SourceEmergencyOOP), catastrophic.MedicalOOP)
	assert.Equal(t, domain.PostStabilizationTier("catastrophic"), catastrophic.ExtraOON)
	assert.True(t, catastrophic.Probability.Equal(decimal.RequireFromString("0.0004")))

	for _, s := range scenarios {
		assert.NotEqual(t, domain.SourcePostStabilizationExpected, s.ExtraOON.Source, "%s must not pre-average tiers", s.Name)
	}
}

func TestStandard_WaiverProbabilityDoesNotWeighScenarios(t *testing.T) {
	build := func(waiver string) []domain.Scenario {
		m, err := domain.NewPostStabilizationTierModel(tiers(t).Tiers(), decimal.NewFromInt(1500), decimal.RequireFromString(waiver))
		require.NoError(t, err)
		set, err := Standard(StandardV2026_1, m)
		require.NoError(t, err)
		return set.Scenarios()
	}

	low, high := build("0.1"), build("0.9")
	require.Len(t, high, len(low))
	for i := range low {
		assert.Equal(t, low[i].Name, high[i].Name)
		assert.True(t, low[i].Probability.Equal(high[i].Probability), "%s", low[i].Name)
	}
}

func TestStandard_ResolvesAgainstPlan(t *testing.T) {
	set, err := Standard(StandardV2026_1, tiers(t))
	require.NoError(t, err)

	bundle := &domain.PlanBundle{Medical: domain.MedicalPlan{
		Name:                      "Kaiser Gold HMO",
		AnnualPremium:             decimal.NewFromInt(18456),
		InNetworkOOPMax:           decimal.NewFromInt(18400),
		ExpectedMinorOOP:          decimal.NewFromInt(400),
		EmergencyAtInNetworkRates: true,
		Network:                   domain.ClosedNetwork{Network: domain.NetworkHMO, Tiers: tiers(t)},
	}}

	resolved, err := set.Resolve(bundle)
	require.NoError(t, err)
	require.Len(t, resolved, 7)

	assert.True(t, resolved[0].TotalOOP().IsZero())
	assert.True(t, resolved[1].TotalOOP().Equal(decimal.NewFromInt(400)))
	assert.True(t, resolved[2].TotalOOP().Equal(decimal.NewFromInt(18400)))
	assert.True(t, resolved[6].TotalOOP().Equal(decimal.NewFromInt(18400+75000+1500)))
}

func TestStandard_UnknownVersion(t *testing.T) {
	_, err := Standard("2019.1", tiers(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "2026.1")

	_, err = Standard(StandardV2026_1, nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestVersions(t *testing.T) {
	assert.Equal(t, []string{StandardV2026_1}, Versions())
	assert.Equal(t, "cat_oon_best", OONScenarioName("best"))
}
