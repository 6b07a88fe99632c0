package compare

import (
	"fmt"

	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// ScenarioRatio is one cell of the plan x scenario matrix
type ScenarioRatio struct {
	Scenario    string          `json:"scenario"`
	Probability decimal.Decimal `json:"probability"`
	MedicalOOP  decimal.Decimal `json:"medicalOOP"`
	ExtraOON    decimal.Decimal `json:"extraOON"`
	Retained    decimal.Decimal `json:"retained"` // dollars of disposable income left
	Ratio       float64         `json:"ratio"`
}

// PlanResult is a scored plan bundle
type PlanResult struct {
	Rank            int             `json:"rank"`
	PlanName        string          `json:"planName"`
	NetworkType     string          `json:"networkType"`
	TotalPremium    decimal.Decimal `json:"totalPremium"`
	InNetworkOOPMax decimal.Decimal `json:"inNetworkOOPMax"`
	Ratios          []ScenarioRatio `json:"ratios"`

	// Key Metrics
	Score               float64  `json:"score"` // geometric mean of the ratios
	ExpectedLogWealth   float64  `json:"-"`     // -Inf when Score is 0
	GeometricMeanWealth float64  `json:"geometricMeanWealth"`
	ArithmeticMean      float64  `json:"arithmeticMean"`
	WorstRatio          float64  `json:"worstRatio"`
	WorstScenario       string   `json:"worstScenario"`
	Clamped             []string `json:"clamped,omitempty"`

	index int
}

// PlanFailure is a plan that could not be scored. It is reported instead of
// being ranked with a fabricated score.
type PlanFailure struct {
	PlanName string `json:"planName"`
	Reason   string `json:"reason"`
	Err      error  `json:"-"`
}

// ProfileSummary echoes the household figures a comparison was run with
type ProfileSummary struct {
	GrossIncome      decimal.Decimal `json:"grossIncome"`
	TaxRate          decimal.Decimal `json:"taxRate"`
	BaselineSpend    decimal.Decimal `json:"baselineSpend"`
	AfterTax         decimal.Decimal `json:"afterTax"`
	DisposableIncome decimal.Decimal `json:"disposableIncome"`
}

func summarize(p domain.FinancialProfile) ProfileSummary {
	return ProfileSummary{
		GrossIncome:      p.GrossIncome,
		TaxRate:          p.TaxRate,
		BaselineSpend:    p.BaselineSpend,
		AfterTax:         p.AfterTax(),
		DisposableIncome: p.DisposableIncome(),
	}
}

// ComparisonResult is the ranked outcome of a comparison
type ComparisonResult struct {
	Profile            ProfileSummary     `json:"profile"`
	ScenarioSetName    string             `json:"scenarioSetName"`
	ScenarioSetVersion string             `json:"scenarioSetVersion"`
	Policy             calculation.Policy `json:"policy"`
	Ranked             []PlanResult       `json:"ranked"`
	Failed             []PlanFailure      `json:"failed"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath,omitempty"`
}

// Best returns the top-ranked plan, or nil when nothing could be scored
func (cr *ComparisonResult) Best() *PlanResult {
	if len(cr.Ranked) == 0 {
		return nil
	}
	return &cr.Ranked[0]
}

// Find returns the first ranked plan with the given name
func (cr *ComparisonResult) Find(name string) *PlanResult {
	for i := range cr.Ranked {
		if cr.Ranked[i].PlanName == name {
			return &cr.Ranked[i]
		}
	}
	return nil
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(result *ComparisonResult) []string {
	recommendations := []string{}

	for _, f := range result.Failed {
		recommendations = append(recommendations,
			"Excluded: "+f.PlanName+" could not be scored ("+f.Reason+")")
	}

	best := result.Best()
	if best == nil {
		return recommendations
	}

	recommendations = append(recommendations,
		fmt.Sprintf("Best Score: %s keeps a geometric mean of %s of disposable income (%s certainty-equivalent)",
			best.PlanName, formatPercent(best.Score), formatDollarsFloat(best.GeometricMeanWealth)))

	// Find cheapest premium
	cheapest := best
	for i := range result.Ranked {
		if result.Ranked[i].TotalPremium.LessThan(cheapest.TotalPremium) {
			cheapest = &result.Ranked[i]
		}
	}
	if cheapest != best {
		savings := best.TotalPremium.Sub(cheapest.TotalPremium)
		recommendations = append(recommendations,
			"Lowest Premium: "+cheapest.PlanName+" costs "+formatDollars(savings)+
				"/yr less than "+best.PlanName+" but scores "+formatPoints(best.Score-cheapest.Score)+" lower")
	}

	// Find best worst case
	safest := best
	for i := range result.Ranked {
		if result.Ranked[i].WorstRatio > safest.WorstRatio {
			safest = &result.Ranked[i]
		}
	}
	if safest != best {
		recommendations = append(recommendations,
			fmt.Sprintf("Best Worst Case: %s keeps %s even in %s (vs %s for %s)",
				safest.PlanName, formatPercent(safest.WorstRatio), safest.WorstScenario,
				formatPercent(best.WorstRatio), best.PlanName))
	}

	if len(result.Ranked) > 1 {
		runnerUp := result.Ranked[1]
		recommendations = append(recommendations,
			fmt.Sprintf("Margin: %s leads %s by %s", best.PlanName, runnerUp.PlanName, formatPoints(best.Score-runnerUp.Score)))
	}

	return recommendations
}
