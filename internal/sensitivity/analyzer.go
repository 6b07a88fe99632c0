package sensitivity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rgehrsitz/planscore/internal/compare"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// Analyzer performs parameter sweep analysis over a plan comparison
type Analyzer struct {
	Comparator *compare.PlanComparator
	Logger     calculation.Logger
}

// NewAnalyzer creates a new sensitivity analyzer
func NewAnalyzer(options compare.CompareOptions) *Analyzer {
	return &Analyzer{
		Comparator: compare.NewPlanComparator(options),
		Logger:     calculation.NopLogger{},
	}
}

// SetLogger sets the logger on the analyzer and its comparator
func (a *Analyzer) SetLogger(l calculation.Logger) {
	if l == nil {
		l = calculation.NopLogger{}
	}
	a.Logger = l
	a.Comparator.SetLogger(l)
}

// Analyze reruns the comparison at every value of the sweep. A value that
// leaves no disposable income is recorded on its point rather than failing
// the sweep.
func (a *Analyzer) Analyze(
	ctx context.Context,
	profile domain.FinancialProfile,
	bundles []domain.PlanBundle,
	set *domain.ScenarioSet,
	sweep Sweep,
) (*Analysis, error) {

	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	if len(bundles) == 0 {
		return nil, domain.NewConfigurationError("analyze", "at least one plan bundle is required")
	}

	planIndex := -1
	if sweep.Parameter == Premium {
		for i := range bundles {
			if bundles[i].Name() == sweep.Plan {
				planIndex = i
				break
			}
		}
		if planIndex < 0 {
			return nil, domain.NewConfigurationError("analyze", "no plan named %q", sweep.Plan)
		}
	}

	base, err := baseValue(profile, bundles, planIndex, sweep.Parameter)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Sweep:      sweep,
		BaseValue:  base,
		Plans:      make([]string, len(bundles)),
		Points:     make([]Point, 0, sweep.Steps),
		Crossovers: []Crossover{},
	}
	for i := range bundles {
		analysis.Plans[i] = bundles[i].Name()
	}

	for _, value := range generateValues(sweep, base) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, b := modify(profile, bundles, planIndex, sweep.Parameter, value)
		point := Point{Value: value, DisposableIncome: p.DisposableIncome()}

		result, err := a.Comparator.Compare(ctx, p, b, set)
		switch {
		case errors.Is(err, domain.ErrDegenerateProfile):
			point.Error = "disposable income is not positive"
		case err != nil:
			return nil, fmt.Errorf("failed to compare plans for %s=%s: %w", sweep.Parameter, value, err)
		default:
			if best := result.Best(); best != nil {
				point.Leader = best.PlanName
			}
			point.Scores = planScores(result, analysis.Plans)
		}

		a.Logger.Debugf("sweep %s=%s: disposable $%s leader %q",
			sweep.Parameter, value, point.DisposableIncome.StringFixed(0), point.Leader)
		analysis.Points = append(analysis.Points, point)
	}

	analysis.Crossovers = crossovers(analysis.Points)
	analysis.Recommendations = GenerateRecommendations(analysis)
	return analysis, nil
}

func baseValue(profile domain.FinancialProfile, bundles []domain.PlanBundle, planIndex int, param Parameter) (decimal.Decimal, error) {
	switch param {
	case TaxRate:
		if profile.AfterTaxIncome != nil {
			return decimal.Zero, domain.NewConfigurationError("analyze", "tax_rate has no effect when after-tax income is given directly")
		}
		return profile.TaxRate, nil
	case BaselineSpend:
		return profile.BaselineSpend, nil
	}
	return bundles[planIndex].Medical.AnnualPremium, nil
}

// generateValues spreads Steps values evenly over [Min, Max]; a single step
// evaluates the base value.
func generateValues(sweep Sweep, base decimal.Decimal) []decimal.Decimal {
	if sweep.Steps <= 1 {
		return []decimal.Decimal{base}
	}

	places := int32(2)
	if sweep.Parameter.IsRate() {
		places = 6
	}

	grid := floats.Span(make([]float64, sweep.Steps), sweep.Min.InexactFloat64(), sweep.Max.InexactFloat64())
	values := make([]decimal.Decimal, len(grid))
	for i, v := range grid {
		values[i] = decimal.NewFromFloat(v).Round(places)
	}
	return values
}

// modify returns copies of the inputs with the parameter set to value
func modify(profile domain.FinancialProfile, bundles []domain.PlanBundle, planIndex int, param Parameter, value decimal.Decimal) (domain.FinancialProfile, []domain.PlanBundle) {
	switch param {
	case TaxRate:
		profile.TaxRate = value
	case BaselineSpend:
		profile.BaselineSpend = value
	case Premium:
		modified := make([]domain.PlanBundle, len(bundles))
		copy(modified, bundles)
		modified[planIndex].Medical.AnnualPremium = value
		return profile, modified
	}
	return profile, bundles
}

func planScores(result *compare.ComparisonResult, plans []string) []PlanScore {
	scores := make([]PlanScore, 0, len(plans))
	for _, name := range plans {
		ps := PlanScore{PlanName: name}
		if r := result.Find(name); r != nil {
			score := r.Score
			ps.Rank = r.Rank
			ps.Score = &score
		} else {
			for _, f := range result.Failed {
				if f.PlanName == name {
					ps.Reason = f.Reason
					break
				}
			}
		}
		scores = append(scores, ps)
	}
	return scores
}

func crossovers(points []Point) []Crossover {
	found := []Crossover{}
	last := -1
	for i, p := range points {
		if p.Leader == "" {
			continue
		}
		if last >= 0 && points[last].Leader != p.Leader {
			found = append(found, Crossover{
				From:  points[last].Leader,
				To:    p.Leader,
				Below: points[last].Value,
				Above: p.Value,
			})
		}
		last = i
	}
	return found
}
