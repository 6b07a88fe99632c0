package breakeven

import (
	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// Request describes a break-even premium search. The solver varies the
// medical plan's annual premium of Bundle until its score meets the target,
// which is either an explicit TargetScore or the score of Against.
type Request struct {
	Profile     domain.FinancialProfile
	Bundle      domain.PlanBundle
	Set         *domain.ScenarioSet
	Against     *domain.PlanBundle
	TargetScore *float64

	MinPremium *decimal.Decimal // Lower search bound (default 0)
	MaxPremium *decimal.Decimal // Upper search bound (default disposable income)
}

// Result holds the outcome of a break-even search
type Result struct {
	PlanName    string  `json:"planName"`
	AgainstName string  `json:"againstName,omitempty"`
	TargetScore float64 `json:"targetScore"`

	CurrentPremium   decimal.Decimal `json:"currentPremium"`
	CurrentScore     *float64        `json:"currentScore,omitempty"` // nil when the plan ruins at its current premium
	BreakEvenPremium decimal.Decimal `json:"breakEvenPremium"`
	Headroom         decimal.Decimal `json:"headroom"` // BreakEvenPremium - CurrentPremium
	AchievedScore    float64         `json:"achievedScore"`

	Iterations      int    `json:"iterations"`
	Success         bool   `json:"success"`
	ConvergenceInfo string `json:"convergenceInfo"`
}

// SolverOptions configures the solver
type SolverOptions struct {
	Policy        calculation.Policy
	Tolerance     decimal.Decimal // Premium precision of the answer
	MaxIterations int
	Parallel      bool // SolveAll only
}

// DefaultSolverOptions returns sensible defaults
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Policy:        calculation.DefaultPolicy(),
		Tolerance:     decimal.NewFromInt(1), // $1
		MaxIterations: 60,
	}
}

// Validate checks the request before any scoring happens
func (r *Request) Validate() error {
	if r.Set == nil || r.Set.Len() == 0 {
		return &BreakEvenError{Operation: "validate", Message: "a non-empty scenario set is required"}
	}
	if (r.Against == nil) == (r.TargetScore == nil) {
		return &BreakEvenError{Operation: "validate", Message: "exactly one of a reference plan or a target score is required"}
	}
	if r.TargetScore != nil && (*r.TargetScore < 0 || *r.TargetScore > 1) {
		return &BreakEvenError{Operation: "validate", Message: "target score must be between 0 and 1"}
	}
	if r.MinPremium != nil && r.MinPremium.IsNegative() {
		return &BreakEvenError{Operation: "validate", Message: "minimum premium cannot be negative"}
	}
	if r.MinPremium != nil && r.MaxPremium != nil && !r.MaxPremium.GreaterThan(*r.MinPremium) {
		return &BreakEvenError{Operation: "validate", Message: "maximum premium must exceed minimum premium"}
	}
	if err := r.Bundle.Validate(); err != nil {
		return &BreakEvenError{Operation: "validate", Message: "invalid plan", Cause: err}
	}
	if r.Against != nil {
		if err := r.Against.Validate(); err != nil {
			return &BreakEvenError{Operation: "validate", Message: "invalid reference plan", Cause: err}
		}
	}
	return nil
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
