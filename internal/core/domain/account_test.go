package domain_test

import (
	"testing"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeSupportedCurrencies(t *testing.T) {
	assert.Equal(t, []string{"TRY"}, domain.NormalizeSupportedCurrencies(domain.CurrencyModeSingle, "try", []string{"USD"}))
	assert.Equal(t, []string{"EUR", "TRY", "USD"}, domain.NormalizeSupportedCurrencies(domain.CurrencyModeMulti, "TRY", []string{"usd", "EUR", "TRY", ""}))
}

func TestAccount_Validate(t *testing.T) {
	base := func() domain.Account {
		return domain.Account{
			Name:                "Main Bank",
			AccountType:         domain.AccountTypeBank,
			CurrencyMode:        domain.CurrencyModeMulti,
			CurrencyCode:        "TRY",
			SupportedCurrencies: []string{"TRY", "USD"},
			Balances:            domain.ZeroBalances([]string{"TRY", "USD"}),
		}
	}

	assert.NoError(t, base().Validate())

	noName := base()
	noName.Name = " "
	assert.ErrorContains(t, noName.Validate(), "name is required")

	missingPrimary := base()
	missingPrimary.SupportedCurrencies = []string{"USD"}
	missingPrimary.Balances = domain.ZeroBalances([]string{"USD"})
	assert.ErrorContains(t, missingPrimary.Validate(), "must include primary currency")

	unknown := base()
	unknown.SupportedCurrencies = []string{"TRY", "XYZ"}
	unknown.Balances = domain.ZeroBalances([]string{"TRY", "XYZ"})
	assert.ErrorContains(t, unknown.Validate(), "unsupported currency")

	single := base()
	single.CurrencyMode = domain.CurrencyModeSingle
	assert.ErrorContains(t, single.Validate(), "exactly its primary currency")
}

func TestAccount_CloneIsDeep(t *testing.T) {
	a := domain.Account{SupportedCurrencies: []string{"TRY"}, Balances: domain.ZeroBalances([]string{"TRY"})}
	c := a.Clone()
	c.SupportedCurrencies[0] = "USD"
	delete(c.Balances, "TRY")

	assert.Equal(t, "TRY", a.SupportedCurrencies[0])
	assert.True(t, a.Supports("TRY"))
}
