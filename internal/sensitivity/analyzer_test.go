package sensitivity

import (
	"context"
	"testing"

	"github.com/rgehrsitz/planscore/internal/catalog"
	"github.com/rgehrsitz/planscore/internal/compare"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/rgehrsitz/planscore/internal/scenario"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func household(gross, spend int64, taxRate string) domain.FinancialProfile {
	return domain.FinancialProfile{
		GrossIncome:   decimal.NewFromInt(gross),
		TaxRate:       decimal.RequireFromString(taxRate),
		BaselineSpend: decimal.NewFromInt(spend),
	}
}

func standardSet(t *testing.T) *domain.ScenarioSet {
	t.Helper()
	set, err := scenario.Standard(scenario.StandardV2026_1, catalog.ResearchTiers())
	require.NoError(t, err)
	return set
}

func minorPlan(t *testing.T, name string, premium int64) domain.PlanBundle {
	t.Helper()
	tiers, err := domain.NewPostStabilizationTierModel([]domain.Tier{
		{Name: "catastrophic", Exposure: decimal.NewFromInt(75000), Probability: decimal.NewFromInt(1)},
	}, decimal.Zero, decimal.NewFromInt(1))
	require.NoError(t, err)
	return domain.PlanBundle{Medical: domain.MedicalPlan{
		Name:                      name,
		AnnualPremium:             decimal.NewFromInt(premium),
		InNetworkOOPMax:           decimal.NewFromInt(10000),
		ExpectedMinorOOP:          decimal.NewFromInt(1000),
		EmergencyAtInNetworkRates: true,
		Network:                   domain.ClosedNetwork{Network: domain.NetworkHMO, Tiers: tiers},
	}}
}

func minorOnlySet(t *testing.T) *domain.ScenarioSet {
	t.Helper()
	set, err := domain.NewScenarioSet("minor", "1", []domain.Scenario{
		{Name: "minor_use", Probability: decimal.NewFromInt(1), MedicalOOP: domain.FromPlan(domain.SourceExpectedMinorOOP)},
	})
	require.NoError(t, err)
	return set
}

func TestAnalyzer_PremiumSweepIsNonIncreasing(t *testing.T) {
	analyzer := NewAnalyzer(compare.CompareOptions{})
	sweep := Sweep{
		Parameter: Premium,
		Min:       decimal.Zero,
		Max:       decimal.NewFromInt(40000),
		Steps:     5,
		Plan:      "Kaiser Gold HMO",
	}

	analysis, err := analyzer.Analyze(context.Background(), household(300000, 60000, "0.30"), catalog.Bundles(), standardSet(t), sweep)
	require.NoError(t, err)
	require.Len(t, analysis.Points, 5)
	assert.True(t, analysis.BaseValue.Equal(decimal.NewFromInt(18456)))
	assert.Len(t, analysis.Plans, 6)

	previous := 2.0
	for i, p := range analysis.Points {
		assert.True(t, p.Value.Equal(decimal.NewFromInt(int64(i)*10000)), "value %s", p.Value)
		score, ok := p.Score("Kaiser Gold HMO")
		require.True(t, ok)
		assert.LessOrEqual(t, score, previous)
		previous = score
	}

	// the break-even against Kaiser Platinum sits near $13k
	require.Len(t, analysis.Crossovers, 1)
	c := analysis.Crossovers[0]
	assert.Equal(t, "Kaiser Gold HMO", c.From)
	assert.Equal(t, "Kaiser Platinum HMO", c.To)
	assert.True(t, c.Below.Equal(decimal.NewFromInt(10000)))
	assert.True(t, c.Above.Equal(decimal.NewFromInt(20000)))
	assert.Contains(t, analysis.Recommendations[0], "Crossover")
}

func TestAnalyzer_TaxRateSweep(t *testing.T) {
	analyzer := NewAnalyzer(compare.CompareOptions{})
	sweep := Sweep{
		Parameter: TaxRate,
		Min:       decimal.RequireFromString("0.2"),
		Max:       decimal.RequireFromString("0.4"),
		Steps:     3,
	}

	analysis, err := analyzer.Analyze(context.Background(), household(300000, 60000, "0.30"), catalog.Bundles(), standardSet(t), sweep)
	require.NoError(t, err)
	require.Len(t, analysis.Points, 3)

	expected := []int64{180000, 150000, 120000}
	for i, p := range analysis.Points {
		assert.True(t, p.DisposableIncome.Equal(decimal.NewFromInt(expected[i])), "disposable %s", p.DisposableIncome)
		assert.Empty(t, p.Error)
	}
	assert.Equal(t, "Kaiser Platinum HMO", analysis.Points[0].Leader)
	assert.Equal(t, "Kaiser Platinum HMO", analysis.Points[1].Leader)
	assert.Equal(t, "Blue Shield Gold 80 PPO", analysis.Points[2].Leader)

	require.Len(t, analysis.Crossovers, 1)
	assert.True(t, analysis.Crossovers[0].Below.Equal(decimal.RequireFromString("0.3")))
}

func TestAnalyzer_DegeneratePointsAreRecorded(t *testing.T) {
	analyzer := NewAnalyzer(compare.CompareOptions{})
	sweep := Sweep{
		Parameter: BaselineSpend,
		Min:       decimal.NewFromInt(50000),
		Max:       decimal.NewFromInt(150000),
		Steps:     3,
	}
	bundles := []domain.PlanBundle{minorPlan(t, "Cheap", 5000), minorPlan(t, "Pricey", 9000)}

	analysis, err := analyzer.Analyze(context.Background(), household(100000, 60000, "0"), bundles, minorOnlySet(t), sweep)
	require.NoError(t, err)
	require.Len(t, analysis.Points, 3)

	assert.Equal(t, "Cheap", analysis.Points[0].Leader)
	score, ok := analysis.Points[0].Score("Cheap")
	require.True(t, ok)
	assert.InDelta(t, 0.88, score, 1e-9) // (50000-5000-1000)/50000
	assert.NotEmpty(t, analysis.Points[1].Error)
	assert.NotEmpty(t, analysis.Points[2].Error)
	assert.Empty(t, analysis.Crossovers)
	assert.Contains(t, analysis.Recommendations[0], "Degenerate")
	assert.Contains(t, analysis.Recommendations[len(analysis.Recommendations)-1], "Stable Leader: Cheap")
}

func TestAnalyzer_SingleStepUsesBaseValue(t *testing.T) {
	analyzer := NewAnalyzer(compare.CompareOptions{})
	sweep := Sweep{Parameter: BaselineSpend, Min: decimal.Zero, Max: decimal.NewFromInt(1), Steps: 1}

	analysis, err := analyzer.Analyze(context.Background(), household(100000, 60000, "0"),
		[]domain.PlanBundle{minorPlan(t, "Only", 5000)}, minorOnlySet(t), sweep)
	require.NoError(t, err)
	require.Len(t, analysis.Points, 1)
	assert.True(t, analysis.Points[0].Value.Equal(decimal.NewFromInt(60000)))
}

func TestAnalyzer_Errors(t *testing.T) {
	analyzer := NewAnalyzer(compare.CompareOptions{})
	set := minorOnlySet(t)
	bundles := []domain.PlanBundle{minorPlan(t, "Only", 5000)}
	profile := household(100000, 60000, "0.2")

	tests := []struct {
		name    string
		profile domain.FinancialProfile
		bundles []domain.PlanBundle
		sweep   Sweep
	}{
		{"unknown parameter", profile, bundles, Sweep{Parameter: "inflation", Steps: 3, Max: decimal.NewFromInt(1)}},
		{"zero steps", profile, bundles, Sweep{Parameter: BaselineSpend, Max: decimal.NewFromInt(1)}},
		{"inverted range", profile, bundles, Sweep{Parameter: BaselineSpend, Steps: 3, Min: decimal.NewFromInt(10)}},
		{"tax rate above one", profile, bundles, Sweep{Parameter: TaxRate, Steps: 3, Max: decimal.NewFromInt(2)}},
		{"premium without plan", profile, bundles, Sweep{Parameter: Premium, Steps: 3, Max: decimal.NewFromInt(1000)}},
		{"unknown plan", profile, bundles, Sweep{Parameter: Premium, Plan: "Missing", Steps: 3, Max: decimal.NewFromInt(1000)}},
		{"no bundles", profile, nil, Sweep{Parameter: BaselineSpend, Steps: 3, Max: decimal.NewFromInt(1000)}},
		{"tax rate with after-tax override", withAfterTax(profile), bundles, Sweep{Parameter: TaxRate, Steps: 3, Max: decimal.RequireFromString("0.5")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.Analyze(context.Background(), tt.profile, tt.bundles, set, tt.sweep)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analyzer.Analyze(ctx, profile, bundles, set, Sweep{Parameter: BaselineSpend, Steps: 3, Max: decimal.NewFromInt(1000)})
	assert.ErrorIs(t, err, context.Canceled)
}

func withAfterTax(p domain.FinancialProfile) domain.FinancialProfile {
	afterTax := decimal.NewFromInt(70000)
	p.AfterTaxIncome = &afterTax
	return p
}

func TestParseParameter(t *testing.T) {
	for _, p := range Parameters {
		parsed, err := ParseParameter(" " + string(p) + " ")
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := ParseParameter("inflation")
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	assert.Equal(t, "30.0%", TaxRate.FormatValue(decimal.RequireFromString("0.3")))
	assert.Equal(t, "$18456", Premium.FormatValue(decimal.NewFromInt(18456)))
}
