package mapping

import (
	"sort"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		Name:          d.Name,
		AccountType:   string(d.AccountType),
		CurrencyMode:  string(d.CurrencyMode),
		CurrencyCode:  d.CurrencyCode,
		BankName:      d.BankName,
		IBAN:          d.IBAN,
		AccountNumber: d.AccountNumber,
		IsDefault:     d.IsDefault,
		IsActive:      d.IsActive,
		Description:   d.Description,
		Notes:         d.Notes,
		AuditFields:   models.AuditFields(d.AuditFields),
	}
}

// ToModelAccountBalances expands the balance map of an account into rows,
// ordered by currency.
func ToModelAccountBalances(d domain.Account) []models.AccountBalance {
	rows := make([]models.AccountBalance, 0, len(d.Balances))
	for code, amount := range d.Balances {
		rows = append(rows, models.AccountBalance{
			AccountID:     d.AccountID,
			CurrencyCode:  code,
			Amount:        amount,
			Version:       1,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CurrencyCode < rows[j].CurrencyCode })
	return rows
}

// ToDomainAccount converts a model Account and its balance rows to a domain Account
func ToDomainAccount(m models.Account, balances []models.AccountBalance) domain.Account {
	acc := domain.Account{
		AccountID:     m.AccountID,
		Name:          m.Name,
		AccountType:   domain.AccountType(m.AccountType),
		CurrencyMode:  domain.CurrencyMode(m.CurrencyMode),
		CurrencyCode:  m.CurrencyCode,
		BankName:      m.BankName,
		IBAN:          m.IBAN,
		AccountNumber: m.AccountNumber,
		IsDefault:     m.IsDefault,
		IsActive:      m.IsActive,
		Description:   m.Description,
		Notes:         m.Notes,
		AuditFields:   domain.AuditFields(m.AuditFields),
		Balances:      make(map[string]decimal.Decimal, len(balances)),
	}
	for _, b := range balances {
		if b.AccountID != m.AccountID {
			continue
		}
		acc.Balances[b.CurrencyCode] = b.Amount
		acc.SupportedCurrencies = append(acc.SupportedCurrencies, b.CurrencyCode)
	}
	sort.Strings(acc.SupportedCurrencies)
	return acc
}
