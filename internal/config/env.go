package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// Environment variables that override household figures
const (
	EnvGrossIncome   = "PLANSCORE_GROSS_INCOME"
	EnvTaxRate       = "PLANSCORE_TAX_RATE"
	EnvBaselineSpend = "PLANSCORE_BASELINE_SPEND"
	EnvLogLevel      = "PLANSCORE_LOG_LEVEL"
)

// EnvOverrides holds values read from the environment. Nil fields leave the
// document's value alone.
type EnvOverrides struct {
	GrossIncome   *decimal.Decimal
	TaxRate       *decimal.Decimal
	BaselineSpend *decimal.Decimal
	LogLevel      string
}

// LoadEnv reads a .env file (if present) and then the environment. Explicit
// files must exist; the default .env is optional.
func LoadEnv(files ...string) (EnvOverrides, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return EnvOverrides{}, fmt.Errorf("failed to load env file: %w", err)
	}

	var o EnvOverrides
	var err error
	if o.GrossIncome, err = getEnvAsDecimal(EnvGrossIncome); err != nil {
		return EnvOverrides{}, err
	}
	if o.TaxRate, err = getEnvAsDecimal(EnvTaxRate); err != nil {
		return EnvOverrides{}, err
	}
	if o.BaselineSpend, err = getEnvAsDecimal(EnvBaselineSpend); err != nil {
		return EnvOverrides{}, err
	}
	o.LogLevel = strings.ToLower(getEnv(EnvLogLevel, ""))
	return o, nil
}

// Apply writes the overrides into a profile
func (o EnvOverrides) Apply(profile *domain.FinancialProfile) {
	if o.GrossIncome != nil {
		profile.GrossIncome = *o.GrossIncome
	}
	if o.TaxRate != nil {
		profile.TaxRate = *o.TaxRate
	}
	if o.BaselineSpend != nil {
		profile.BaselineSpend = *o.BaselineSpend
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDecimal(key string) (*decimal.Decimal, error) {
	value := getEnv(key, "")
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, domain.NewConfigurationError("load_env", "%s=%q is not a number", key, value)
	}
	return &d, nil
}
