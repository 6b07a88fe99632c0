package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rgehrsitz/planscore/internal/domain"
	"golang.org/x/sync/errgroup"
)

// PlanComparator scores plan bundles against a scenario set and ranks them
type PlanComparator struct {
	Engine     *calculation.WealthRatioEngine
	Aggregator *calculation.Aggregator
	Parallel   bool // score plans concurrently; output is identical either way
	Logger     calculation.Logger
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Policy   calculation.Policy
	Parallel bool
}

// NewPlanComparator creates a new comparator
func NewPlanComparator(options CompareOptions) *PlanComparator {
	return &PlanComparator{
		Engine:     calculation.NewWealthRatioEngine(),
		Aggregator: calculation.NewAggregator(options.Policy),
		Parallel:   options.Parallel,
		Logger:     calculation.NopLogger{},
	}
}

// SetLogger sets the logger on the comparator and the engines it drives
func (pc *PlanComparator) SetLogger(l calculation.Logger) {
	if l == nil {
		l = calculation.NopLogger{}
	}
	pc.Logger = l
	pc.Engine.SetLogger(l)
	pc.Aggregator.SetLogger(l)
}

type outcome struct {
	result  *PlanResult
	failure *PlanFailure
}

// Compare scores every bundle and ranks the successes by score descending,
// then total premium ascending, then name, then input order. A degenerate
// profile or an empty bundle list fails the whole comparison; a plan that
// cannot be scored lands in Failed.
func (pc *PlanComparator) Compare(
	ctx context.Context,
	profile domain.FinancialProfile,
	bundles []domain.PlanBundle,
	set *domain.ScenarioSet,
) (*ComparisonResult, error) {

	disposable := profile.DisposableIncome()
	if !disposable.IsPositive() {
		return nil, &domain.DegenerateProfileError{DisposableIncome: disposable}
	}
	if len(bundles) == 0 {
		return nil, domain.NewConfigurationError("compare", "at least one plan bundle is required")
	}
	if set == nil || set.Len() == 0 {
		return nil, domain.NewConfigurationError("compare", "a non-empty scenario set is required")
	}

	pc.Logger.Infof("comparing %d plans across %d scenarios (set %s %s, disposable $%s)",
		len(bundles), set.Len(), set.Name(), set.Version(), disposable.StringFixed(0))

	outcomes := make([]outcome, len(bundles))
	if pc.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range bundles {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = pc.evaluate(profile, &bundles[i], set, i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range bundles {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = pc.evaluate(profile, &bundles[i], set, i)
		}
	}

	result := &ComparisonResult{
		Profile:            summarize(profile),
		ScenarioSetName:    set.Name(),
		ScenarioSetVersion: set.Version(),
		Policy:             pc.Aggregator.Policy,
		Ranked:             []PlanResult{},
		Failed:             []PlanFailure{},
	}
	for _, o := range outcomes {
		if o.failure != nil {
			result.Failed = append(result.Failed, *o.failure)
			continue
		}
		result.Ranked = append(result.Ranked, *o.result)
	}

	rank(result.Ranked)
	result.Recommendations = GenerateRecommendations(result)
	return result, nil
}

func (pc *PlanComparator) evaluate(profile domain.FinancialProfile, bundle *domain.PlanBundle, set *domain.ScenarioSet, index int) outcome {
	fail := func(err error) outcome {
		pc.Logger.Warnf("plan %q not scored: %v", bundle.Name(), err)
		return outcome{failure: &PlanFailure{PlanName: bundle.Name(), Reason: failureReason(err), Err: err}}
	}

	if err := bundle.Validate(); err != nil {
		return fail(err)
	}
	row, err := pc.Engine.Row(profile, bundle, set)
	if err != nil {
		return fail(err)
	}
	score, err := pc.Aggregator.Score(row)
	if err != nil {
		return fail(err)
	}

	ratios := make([]ScenarioRatio, len(row.Ratios))
	for i, rs := range row.Scenarios {
		ratios[i] = ScenarioRatio{
			Scenario:    rs.Name,
			Probability: rs.Probability,
			MedicalOOP:  rs.MedicalOOP,
			ExtraOON:    rs.ExtraOON,
			Retained:    row.Retained[i],
			Ratio:       row.Ratios[i],
		}
	}

	return outcome{result: &PlanResult{
		PlanName:            bundle.Name(),
		NetworkType:         bundle.Medical.NetworkType().String(),
		TotalPremium:        bundle.TotalPremium(),
		InNetworkOOPMax:     bundle.Medical.InNetworkOOPMax,
		Ratios:              ratios,
		Score:               score.GeometricMean,
		ExpectedLogWealth:   score.ExpectedLogWealth,
		GeometricMeanWealth: score.GeometricMeanWealth(row),
		ArithmeticMean:      score.ArithmeticMean,
		WorstRatio:          score.WorstRatio,
		WorstScenario:       score.WorstScenario,
		Clamped:             score.Clamped,
		index:               index,
	}}
}

// rank sorts results in place and numbers them from 1
func rank(results []PlanResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if c := a.TotalPremium.Cmp(b.TotalPremium); c != 0 {
			return c < 0
		}
		if a.PlanName != b.PlanName {
			return a.PlanName < b.PlanName
		}
		return a.index < b.index
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

func failureReason(err error) string {
	var ruin *domain.RuinScenarioError
	switch {
	case errors.As(err, &ruin):
		return fmt.Sprintf("ruin in scenario %s: ratio %.4f", ruin.ScenarioName, ruin.Ratio)
	case errors.Is(err, domain.ErrConfiguration):
		return "invalid plan: " + err.Error()
	}
	return err.Error()
}
