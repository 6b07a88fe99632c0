package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinancialProfile_DisposableIncome(t *testing.T) {
	profile := FinancialProfile{
		GrossIncome:   d(240000),
		TaxRate:       d(0.30),
		BaselineSpend: d(80000),
	}
	assert.True(t, profile.AfterTax().Equal(d(168000)))
	assert.True(t, profile.DisposableIncome().Equal(d(88000)))

	afterTax := d(150000)
	profile.AfterTaxIncome = &afterTax
	assert.True(t, profile.DisposableIncome().Equal(d(70000)), "after-tax override takes precedence")
}

func TestFinancialProfile_DisposableMayBeNonPositive(t *testing.T) {
	profile := FinancialProfile{GrossIncome: d(100000), TaxRate: d(0.5), BaselineSpend: d(80000)}
	assert.True(t, profile.DisposableIncome().Equal(d(-30000)))
	assert.NoError(t, profile.Validate())
}

func TestFinancialProfile_Validate(t *testing.T) {
	profile := FinancialProfile{GrossIncome: d(100000), TaxRate: d(1.1)}
	assert.ErrorIs(t, profile.Validate(), ErrConfiguration)
}
