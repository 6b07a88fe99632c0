package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/planscore/internal/compare"
	"github.com/rgehrsitz/planscore/internal/domain"
)

// LeaderResult holds the break-even premium of every plan against the
// top-ranked plan of a comparison
type LeaderResult struct {
	Leader          string                `json:"leader"`
	LeaderScore     float64               `json:"leaderScore"`
	Results         []Result              `json:"results"`
	Unreachable     []compare.PlanFailure `json:"unreachable"`
	Recommendations []string              `json:"recommendations"`
}

// SolveAgainstLeader ranks the bundles, then solves the break-even premium of
// every other bundle against the leader. A plan that cannot reach the leader's
// score at any premium is listed in Unreachable.
func (s *Solver) SolveAgainstLeader(
	ctx context.Context,
	profile domain.FinancialProfile,
	bundles []domain.PlanBundle,
	set *domain.ScenarioSet,
) (*LeaderResult, error) {

	comparator := compare.NewPlanComparator(compare.CompareOptions{Policy: s.Options.Policy})
	comparator.SetLogger(s.Logger)

	ranking, err := comparator.Compare(ctx, profile, bundles, set)
	if err != nil {
		return nil, err
	}
	best := ranking.Best()
	if best == nil {
		return nil, &BreakEvenError{
			Operation: "solve_against_leader",
			Message:   "no plan could be scored",
		}
	}

	leaderIndex := -1
	for i := range bundles {
		if bundles[i].Name() == best.PlanName {
			leaderIndex = i
			break
		}
	}

	result := &LeaderResult{
		Leader:      best.PlanName,
		LeaderScore: best.Score,
		Results:     []Result{},
		Unreachable: []compare.PlanFailure{},
	}

	for i := range bundles {
		if i == leaderIndex {
			continue
		}
		res, err := s.Solve(ctx, Request{
			Profile: profile,
			Bundle:  bundles[i],
			Set:     set,
			Against: &bundles[leaderIndex],
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.Logger.Warnf("break-even for %q not found: %v", bundles[i].Name(), err)
			result.Unreachable = append(result.Unreachable, compare.PlanFailure{
				PlanName: bundles[i].Name(),
				Reason:   err.Error(),
				Err:      err,
			})
			continue
		}
		result.Results = append(result.Results, *res)
	}

	result.Recommendations = s.generateLeaderRecommendations(result)
	return result, nil
}

// generateLeaderRecommendations names the plan closest to the leader
func (s *Solver) generateLeaderRecommendations(result *LeaderResult) []string {
	var recommendations []string

	var closest *Result
	for i := range result.Results {
		if closest == nil || result.Results[i].Headroom.GreaterThan(closest.Headroom) {
			closest = &result.Results[i]
		}
	}

	if closest != nil {
		cut := closest.Headroom.Neg()
		if cut.IsPositive() {
			recommendations = append(recommendations, fmt.Sprintf(
				"Closest Challenger: %s would match %s with a premium $%s lower (at $%s)",
				closest.PlanName, result.Leader, cut.StringFixed(0), closest.BreakEvenPremium.StringFixed(0)))
		} else {
			recommendations = append(recommendations, fmt.Sprintf(
				"Closest Challenger: %s already matches %s at its current premium",
				closest.PlanName, result.Leader))
		}
	}

	for _, u := range result.Unreachable {
		recommendations = append(recommendations, fmt.Sprintf(
			"No Break-Even: %s cannot match %s at any premium", u.PlanName, result.Leader))
	}

	return recommendations
}
