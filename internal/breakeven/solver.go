package breakeven

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// Solver finds the medical premium at which a plan's score meets a target
type Solver struct {
	Engine     *calculation.WealthRatioEngine
	Aggregator *calculation.Aggregator
	Options    SolverOptions
	Logger     calculation.Logger
}

// NewSolver creates a new break-even solver
func NewSolver(options SolverOptions) *Solver {
	defaults := DefaultSolverOptions()
	if !options.Tolerance.IsPositive() {
		options.Tolerance = defaults.Tolerance
	}
	if options.MaxIterations <= 0 {
		options.MaxIterations = defaults.MaxIterations
	}
	return &Solver{
		Engine:     calculation.NewWealthRatioEngine(),
		Aggregator: calculation.NewAggregator(options.Policy),
		Options:    options,
		Logger:     calculation.NopLogger{},
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultSolverOptions())
}

// SetLogger sets the logger on the solver and the engines it drives
func (s *Solver) SetLogger(l calculation.Logger) {
	if l == nil {
		l = calculation.NopLogger{}
	}
	s.Logger = l
	s.Engine.SetLogger(l)
	s.Aggregator.SetLogger(l)
}

// Solve runs a bisection over the premium. The score is non-increasing in
// premium, so the answer is the largest premium whose score still meets the
// target. A premium that ruins the plan counts as missing the target.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	disposable := req.Profile.DisposableIncome()
	if !disposable.IsPositive() {
		return nil, &domain.DegenerateProfileError{DisposableIncome: disposable}
	}

	result := &Result{
		PlanName:       req.Bundle.Name(),
		CurrentPremium: req.Bundle.Medical.AnnualPremium,
	}

	if req.TargetScore != nil {
		result.TargetScore = *req.TargetScore
	} else {
		result.AgainstName = req.Against.Name()
		target, err := s.score(req.Profile, req.Against, req.Set)
		if err != nil {
			return nil, &BreakEvenError{
				Operation: "solve",
				Message:   fmt.Sprintf("reference plan %q cannot be scored", req.Against.Name()),
				Cause:     err,
			}
		}
		result.TargetScore = target
	}

	current, err := s.score(req.Profile, &req.Bundle, req.Set)
	switch {
	case err == nil:
		result.CurrentScore = &current
	case !errors.Is(err, domain.ErrRuinScenario):
		return nil, &BreakEvenError{Operation: "solve", Message: "failed to score plan", Cause: err}
	}

	minPremium := decimal.Zero
	maxPremium := disposable
	if req.MinPremium != nil {
		minPremium = *req.MinPremium
	}
	if req.MaxPremium != nil {
		maxPremium = *req.MaxPremium
	}
	if !maxPremium.GreaterThan(minPremium) {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("empty premium range [$%s, $%s]", minPremium.StringFixed(0), maxPremium.StringFixed(0)),
		}
	}

	lowScore, ok, err := s.meets(req, minPremium, result.TargetScore)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message: fmt.Sprintf("target score %.4f is not reachable at a premium of $%s",
				result.TargetScore, minPremium.StringFixed(0)),
		}
	}

	highScore, ok, err := s.meets(req, maxPremium, result.TargetScore)
	if err != nil {
		return nil, err
	}
	if ok {
		result.finish(maxPremium, highScore, 0)
		result.Success = true
		result.ConvergenceInfo = "Target met across the whole premium range"
		return result, nil
	}

	two := decimal.NewFromInt(2)
	achieved := lowScore
	iterations := 0

	for iterations < s.Options.MaxIterations {
		iterations++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mid := minPremium.Add(maxPremium).Div(two)
		score, ok, err := s.meets(req, mid, result.TargetScore)
		if err != nil {
			return nil, err
		}
		s.Logger.Debugf("break-even %s: iteration %d premium $%s score %.6f (target %.6f)",
			result.PlanName, iterations, mid.StringFixed(2), score, result.TargetScore)

		if ok {
			minPremium = mid
			achieved = score
		} else {
			maxPremium = mid
		}

		if maxPremium.Sub(minPremium).LessThanOrEqual(s.Options.Tolerance) {
			result.finish(minPremium, achieved, iterations)
			result.Success = true
			result.ConvergenceInfo = fmt.Sprintf("Converged to within $%s", s.Options.Tolerance.String())
			return result, nil
		}
	}

	result.finish(minPremium, achieved, iterations)
	result.ConvergenceInfo = fmt.Sprintf("Max iterations (%d) reached", s.Options.MaxIterations)
	return result, nil
}

func (r *Result) finish(premium decimal.Decimal, score float64, iterations int) {
	r.BreakEvenPremium = premium.Round(2)
	r.Headroom = r.BreakEvenPremium.Sub(r.CurrentPremium)
	r.AchievedScore = score
	r.Iterations = iterations
}

// meets scores the plan at premium. Ruin is reported as a miss, not an error.
func (s *Solver) meets(req Request, premium decimal.Decimal, target float64) (float64, bool, error) {
	bundle := req.Bundle
	bundle.Medical.AnnualPremium = premium

	score, err := s.score(req.Profile, &bundle, req.Set)
	if errors.Is(err, domain.ErrRuinScenario) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("failed to score plan at premium $%s", premium.StringFixed(2)),
			Cause:     err,
		}
	}
	return score, score >= target, nil
}

func (s *Solver) score(profile domain.FinancialProfile, bundle *domain.PlanBundle, set *domain.ScenarioSet) (float64, error) {
	row, err := s.Engine.Row(profile, bundle, set)
	if err != nil {
		return 0, err
	}
	score, err := s.Aggregator.Score(row)
	if err != nil {
		return 0, err
	}
	return score.GeometricMean, nil
}
