package calculation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func tierModel(t *testing.T) *domain.PostStabilizationTierModel {
	t.Helper()
	m, err := domain.NewPostStabilizationTierModel([]domain.Tier{
		{Name: "best", Exposure: dec(3000), Probability: dec(0.30)},
		{Name: "expected", Exposure: dec(15000), Probability: dec(0.50)},
		{Name: "moderate_worst", Exposure: dec(35000), Probability: dec(0.18)},
		{Name: "catastrophic", Exposure: dec(75000), Probability: dec(0.02)},
	}, dec(1500), dec(0.5))
	require.NoError(t, err)
	return m
}

func platinumBundle(t *testing.T) *domain.PlanBundle {
	return &domain.PlanBundle{
		Medical: domain.MedicalPlan{
			Name:                      "Kaiser Platinum HMO",
			AnnualPremium:             dec(19824),
			InNetworkOOPMax:           dec(10000),
			ExpectedMinorOOP:          dec(200),
			EmergencyAtInNetworkRates: true,
			Network:                   domain.ClosedNetwork{Network: domain.NetworkHMO, Tiers: tierModel(t)},
		},
		Dental: &domain.DentalPlan{Name: "Delta Dental PPO", AnnualPremium: dec(800)},
		Vision: &domain.VisionPlan{Name: "VSP Vision", AnnualPremium: dec(300)},
	}
}

func profileWithDisposable(disposable float64) domain.FinancialProfile {
	afterTax := dec(disposable)
	return domain.FinancialProfile{AfterTaxIncome: &afterTax}
}

func TestNewWealthRatioEngine(t *testing.T) {
	engine := NewWealthRatioEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
}

func TestWealthRatioEngine_SetLogger(t *testing.T) {
	engine := NewWealthRatioEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestWealthRatioEngine_Ratio(t *testing.T) {
	engine := NewWealthRatioEngine()
	bundle := platinumBundle(t)
	require.True(t, bundle.TotalPremium().Equal(dec(20924)))

	rs := domain.ResolvedScenario{Name: "cat_in_network", MedicalOOP: dec(10000)}
	ratio, err := engine.Ratio(profileWithDisposable(117350), bundle, rs)

	require.NoError(t, err)
	assert.InDelta(t, 0.7364, ratio, 0.001, "(117350 - 20924 - 10000) / 117350")
}

func TestWealthRatioEngine_RatioIncludesAddOnOOP(t *testing.T) {
	engine := NewWealthRatioEngine()
	bundle := platinumBundle(t)
	bundle.Dental.ExpectedOOP = dec(200)
	bundle.Vision.ExpectedOOP = dec(50)

	ratio, err := engine.Ratio(profileWithDisposable(100000), bundle, domain.ResolvedScenario{Name: "no_use"})
	require.NoError(t, err)
	assert.InDelta(t, (100000-20924-250)/100000.0, ratio, 1e-12)
}

func TestWealthRatioEngine_RatioMayBeNegative(t *testing.T) {
	engine := NewWealthRatioEngine()
	rs := domain.ResolvedScenario{Name: "cat_oon_catastrophic", MedicalOOP: dec(10000), ExtraOON: dec(76500)}

	ratio, err := engine.Ratio(profileWithDisposable(50000), platinumBundle(t), rs)
	require.NoError(t, err, "ruin is not an engine error")
	assert.Less(t, ratio, 0.0)
}

func TestWealthRatioEngine_DegenerateProfile(t *testing.T) {
	engine := NewWealthRatioEngine()
	bundle := platinumBundle(t)

	for _, disposable := range []float64{0, -30000} {
		t.Run(fmt.Sprintf("D=%v", disposable), func(t *testing.T) {
			_, err := engine.Ratio(profileWithDisposable(disposable), bundle, domain.ResolvedScenario{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDegenerateProfile))

			var degenerate *domain.DegenerateProfileError
			require.True(t, errors.As(err, &degenerate))
			assert.True(t, degenerate.DisposableIncome.Equal(dec(disposable)))
		})
	}
}

func TestWealthRatioEngine_Row(t *testing.T) {
	engine := NewWealthRatioEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	set, err := domain.NewScenarioSet("test", "1", []domain.Scenario{
		{Name: "no_use", Probability: dec(0.7)},
		{Name: "cat_in_network", Probability: dec(0.3), MedicalOOP: domain.FromPlan(domain.SourceInNetworkOOPMax)},
	})
	require.NoError(t, err)

	row, err := engine.Row(profileWithDisposable(117350), platinumBundle(t), set)
	require.NoError(t, err)

	assert.Equal(t, "Kaiser Platinum HMO", row.PlanName)
	require.Len(t, row.Ratios, 2)
	assert.InDelta(t, 96426/117350.0, row.Ratios[0], 1e-9)
	assert.InDelta(t, 0.7364, row.Ratios[1], 0.001)
	assert.True(t, row.Retained[1].Equal(dec(86426)))
	assert.Equal(t, "cat_in_network", row.Scenarios[1].Name)
	assert.Len(t, logger.messages, 2, "one debug line per scenario")
}

func TestWealthRatioEngine_RowUnresolvableTier(t *testing.T) {
	engine := NewWealthRatioEngine()
	set, err := domain.NewScenarioSet("test", "1", []domain.Scenario{
		{Name: "oon", ExtraOON: domain.PostStabilizationTier("unknown")},
	})
	require.NoError(t, err)

	_, err = engine.Row(profileWithDisposable(100000), platinumBundle(t), set)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
	assert.Contains(t, err.Error(), "Kaiser Platinum HMO")
}

func TestWealthRatioEngine_PremiumMonotonicity(t *testing.T) {
	engine := NewWealthRatioEngine()
	cheap := platinumBundle(t)
	pricey := platinumBundle(t)
	pricey.Medical.AnnualPremium = cheap.Medical.AnnualPremium.Add(dec(1200))

	rs := domain.ResolvedScenario{Name: "minor", MedicalOOP: dec(200)}
	profile := profileWithDisposable(88000)

	low, err := engine.Ratio(profile, cheap, rs)
	require.NoError(t, err)
	high, err := engine.Ratio(profile, pricey, rs)
	require.NoError(t, err)
	assert.Less(t, high, low)
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "DEBUG: "+format)
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "INFO: "+format)
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "WARN: "+format)
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "ERROR: "+format)
}
