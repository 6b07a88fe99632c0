package domain

import (
	"github.com/shopspring/decimal"
)

// FinancialProfile holds the household figures that anchor the wealth-ratio
// scale. A ratio of 1.0 means the whole disposable income was retained.
type FinancialProfile struct {
	GrossIncome   decimal.Decimal `yaml:"gross_income" json:"grossIncome"`
	TaxRate       decimal.Decimal `yaml:"tax_rate" json:"taxRate"`             // effective rate, 0.0-1.0
	BaselineSpend decimal.Decimal `yaml:"baseline_spend" json:"baselineSpend"` // rent, food, everything but health

	// AfterTaxIncome, when set, takes precedence over GrossIncome x (1 - TaxRate).
	AfterTaxIncome *decimal.Decimal `yaml:"after_tax_income,omitempty" json:"afterTaxIncome,omitempty"`
}

// AfterTax returns the household's income after taxes.
func (fp FinancialProfile) AfterTax() decimal.Decimal {
	if fp.AfterTaxIncome != nil {
		return *fp.AfterTaxIncome
	}
	return fp.GrossIncome.Mul(decimal.NewFromInt(1).Sub(fp.TaxRate))
}

// DisposableIncome returns after-tax income minus baseline spending. The
// result may be zero or negative; consumers decide whether that is usable.
func (fp FinancialProfile) DisposableIncome() decimal.Decimal {
	return fp.AfterTax().Sub(fp.BaselineSpend)
}

// Validate checks the profile's static ranges.
func (fp FinancialProfile) Validate() error {
	if fp.GrossIncome.IsNegative() {
		return NewConfigurationError("validate_profile", "gross income cannot be negative")
	}
	if fp.TaxRate.IsNegative() || fp.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return NewConfigurationError("validate_profile", "tax rate must be between 0 and 1, got %s", fp.TaxRate.String())
	}
	if fp.BaselineSpend.IsNegative() {
		return NewConfigurationError("validate_profile", "baseline spend cannot be negative")
	}
	if fp.AfterTaxIncome != nil && fp.AfterTaxIncome.IsNegative() {
		return NewConfigurationError("validate_profile", "after-tax income cannot be negative")
	}
	return nil
}
