package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrDegenerateProfile = errors.New("degenerate financial profile")
	ErrRuinScenario      = errors.New("ruin scenario")
)

// ConfigurationError reports malformed static input. It is raised when a
// value is constructed or validated, never while scoring.
type ConfigurationError struct {
	Operation string
	Message   string
	Cause     error
}

// NewConfigurationError builds a ConfigurationError with a formatted message.
func NewConfigurationError(operation, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DegenerateProfileError is returned when disposable income is zero or
// negative, so no wealth-ratio scale can be anchored on it.
type DegenerateProfileError struct {
	DisposableIncome decimal.Decimal
}

func (e *DegenerateProfileError) Error() string {
	return fmt.Sprintf("disposable income must be positive, got $%s", e.DisposableIncome.StringFixed(2))
}

func (e *DegenerateProfileError) Is(target error) bool {
	return target == ErrDegenerateProfile
}

// RuinScenarioError is returned when a wealth ratio is negative, which leaves
// the geometric mean undefined over the reals.
type RuinScenarioError struct {
	PlanName     string
	ScenarioName string
	Index        int
	Ratio        float64
}

func (e *RuinScenarioError) Error() string {
	target := fmt.Sprintf("scenario #%d", e.Index)
	if e.ScenarioName != "" {
		target = fmt.Sprintf("scenario %q", e.ScenarioName)
	}
	if e.PlanName != "" {
		target = fmt.Sprintf("plan %q %s", e.PlanName, target)
	}
	return fmt.Sprintf("%s ruins the household: wealth ratio %.4f is negative", target, e.Ratio)
}

func (e *RuinScenarioError) Is(target error) bool {
	return target == ErrRuinScenario
}
