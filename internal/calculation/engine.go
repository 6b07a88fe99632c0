package calculation

import (
	"fmt"

	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// WealthRatioEngine turns resolved scenarios into wealth ratios: the fraction
// of disposable income a household keeps after premiums and out-of-pocket costs.
type WealthRatioEngine struct {
	Logger Logger
}

// NewWealthRatioEngine creates an engine that logs nowhere
func NewWealthRatioEngine() *WealthRatioEngine {
	return &WealthRatioEngine{Logger: NopLogger{}}
}

// SetLogger replaces the engine's logger; nil restores the no-op logger
func (e *WealthRatioEngine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Ratio computes (D - premium - add-on OOP - medical OOP - extra OON) / D for
// one resolved scenario. Negative results are returned unchanged; deciding
// what ruin means is left to the aggregator.
func (e *WealthRatioEngine) Ratio(profile domain.FinancialProfile, bundle *domain.PlanBundle, rs domain.ResolvedScenario) (float64, error) {
	disposable := profile.DisposableIncome()
	if !disposable.IsPositive() {
		return 0, &domain.DegenerateProfileError{DisposableIncome: disposable}
	}
	return ratioOf(disposable, retained(disposable, bundle, rs)), nil
}

// Row is one plan bundle evaluated against every scenario of a set
type Row struct {
	PlanName         string
	DisposableIncome decimal.Decimal
	TotalPremium     decimal.Decimal
	Scenarios        []domain.ResolvedScenario
	Retained         []decimal.Decimal // dollars left per scenario
	Ratios           []float64
}

// Row resolves the set against the bundle and computes a ratio per scenario,
// in set order.
func (e *WealthRatioEngine) Row(profile domain.FinancialProfile, bundle *domain.PlanBundle, set *domain.ScenarioSet) (*Row, error) {
	disposable := profile.DisposableIncome()
	if !disposable.IsPositive() {
		return nil, &domain.DegenerateProfileError{DisposableIncome: disposable}
	}
	if set == nil || set.Len() == 0 {
		return nil, domain.NewConfigurationError("wealth_ratio_row", "scenario set is empty")
	}

	resolved, err := set.Resolve(bundle)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", bundle.Name(), err)
	}

	row := &Row{
		PlanName:         bundle.Name(),
		DisposableIncome: disposable,
		TotalPremium:     bundle.TotalPremium(),
		Scenarios:        resolved,
		Retained:         make([]decimal.Decimal, len(resolved)),
		Ratios:           make([]float64, len(resolved)),
	}
	for i, rs := range resolved {
		kept := retained(disposable, bundle, rs)
		row.Retained[i] = kept
		row.Ratios[i] = ratioOf(disposable, kept)
		e.Logger.Debugf("%s / %s: oop=%s retained=%s ratio=%.4f",
			row.PlanName, rs.Name, rs.TotalOOP().StringFixed(0), kept.StringFixed(0), row.Ratios[i])
	}
	return row, nil
}

func retained(disposable decimal.Decimal, bundle *domain.PlanBundle, rs domain.ResolvedScenario) decimal.Decimal {
	return disposable.
		Sub(bundle.TotalPremium()).
		Sub(bundle.AddOnOOP()).
		Sub(rs.MedicalOOP).
		Sub(rs.ExtraOON)
}

func ratioOf(disposable, kept decimal.Decimal) float64 {
	return kept.Div(disposable).InexactFloat64()
}
