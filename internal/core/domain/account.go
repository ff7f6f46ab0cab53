package domain

import (
	"sort"
	"strings"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountType classifies where the money physically sits.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeOther      AccountType = "other"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCash, AccountTypeCreditCard, AccountTypeOther:
		return true
	}
	return false
}

// CurrencyMode tells whether an account holds one or several currencies.
type CurrencyMode string

const (
	CurrencyModeSingle CurrencyMode = "single"
	CurrencyModeMulti  CurrencyMode = "multi"
)

// IsValid reports whether m is a known currency mode.
func (m CurrencyMode) IsValid() bool {
	return m == CurrencyModeSingle || m == CurrencyModeMulti
}

// Account is a place money sits. Balances are only ever written by the balance mutator.
type Account struct {
	AccountID           string                     `json:"accountID"`
	Name                string                     `json:"name"`
	AccountType         AccountType                `json:"accountType"`
	CurrencyMode        CurrencyMode               `json:"currencyMode"`
	CurrencyCode        string                     `json:"currencyCode"` // primary currency
	SupportedCurrencies []string                   `json:"supportedCurrencies"`
	Balances            map[string]decimal.Decimal `json:"balances"`
	BankName            string                     `json:"bankName,omitempty"`
	IBAN                string                     `json:"iban,omitempty"`
	AccountNumber       string                     `json:"accountNumber,omitempty"`
	IsDefault           bool                       `json:"isDefault"`
	IsActive            bool                       `json:"isActive"`
	Description         string                     `json:"description,omitempty"`
	Notes               string                     `json:"notes,omitempty"`
	AuditFields
}

// Supports reports whether the account holds a balance in currency.
func (a Account) Supports(currency string) bool {
	_, ok := a.Balances[NormalizeCurrencyCode(currency)]
	return ok
}

// BalanceOf returns the balance held in currency.
func (a Account) BalanceOf(currency string) (decimal.Decimal, bool) {
	b, ok := a.Balances[NormalizeCurrencyCode(currency)]
	return b, ok
}

// Clone returns a deep copy so callers can mutate maps and slices freely.
func (a Account) Clone() Account {
	c := a
	c.SupportedCurrencies = append([]string(nil), a.SupportedCurrencies...)
	c.Balances = make(map[string]decimal.Decimal, len(a.Balances))
	for k, v := range a.Balances {
		c.Balances[k] = v
	}
	return c
}

// NormalizeSupportedCurrencies resolves the currency set for an account:
// single mode always holds exactly the primary currency, multi mode holds
// the given set plus the primary currency, deduplicated and sorted.
func NormalizeSupportedCurrencies(mode CurrencyMode, primary string, supported []string) []string {
	primary = NormalizeCurrencyCode(primary)
	if mode == CurrencyModeSingle {
		return []string{primary}
	}
	seen := map[string]struct{}{primary: {}}
	out := []string{primary}
	for _, code := range supported {
		code = NormalizeCurrencyCode(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// ZeroBalances builds a balance map with a zero entry per currency.
func ZeroBalances(currencies []string) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(currencies))
	for _, c := range currencies {
		m[c] = decimal.Zero
	}
	return m
}

// Validate checks the structural rules of an account.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return apperrors.Validation("account name is required")
	}
	if !a.AccountType.IsValid() {
		return apperrors.Validation("invalid account type %q", a.AccountType)
	}
	if !a.CurrencyMode.IsValid() {
		return apperrors.Validation("invalid currency mode %q", a.CurrencyMode)
	}
	if !IsSupportedCurrency(a.CurrencyCode) {
		return apperrors.Validation("unsupported currency %q", a.CurrencyCode)
	}
	if len(a.SupportedCurrencies) == 0 {
		return apperrors.Validation("account must support at least one currency")
	}
	primaryFound := false
	for _, c := range a.SupportedCurrencies {
		if !IsSupportedCurrency(c) {
			return apperrors.Validation("unsupported currency %q", c)
		}
		if c == a.CurrencyCode {
			primaryFound = true
		}
	}
	if !primaryFound {
		return apperrors.Validation("supported currencies must include primary currency %s", a.CurrencyCode)
	}
	if a.CurrencyMode == CurrencyModeSingle && len(a.SupportedCurrencies) != 1 {
		return apperrors.Validation("single-currency account must support exactly its primary currency")
	}
	if len(a.Balances) != len(a.SupportedCurrencies) {
		return apperrors.Validation("balances must cover exactly the supported currencies")
	}
	for _, c := range a.SupportedCurrencies {
		if _, ok := a.Balances[c]; !ok {
			return apperrors.Validation("missing balance for currency %s", c)
		}
	}
	return nil
}

// AccountFilter narrows account listings. Zero values match everything.
type AccountFilter struct {
	AccountType  AccountType
	CurrencyCode string // matches any supported currency
	ActiveOnly   bool
	Limit        int
	Offset       int
}

// Matches reports whether a satisfies every set field of f. Paging is applied by the caller.
func (f AccountFilter) Matches(a Account) bool {
	if f.AccountType != "" && a.AccountType != f.AccountType {
		return false
	}
	if f.CurrencyCode != "" && !a.Supports(f.CurrencyCode) {
		return false
	}
	if f.ActiveOnly && !a.IsActive {
		return false
	}
	return true
}

// AccountUsage counts the records that reference an account.
type AccountUsage struct {
	Transactions int `json:"transactions"`
	Obligations  int `json:"obligations"`
	Salaries     int `json:"salaries"`
}

// InUse reports whether anything references the account.
func (u AccountUsage) InUse() bool {
	return u.Transactions+u.Obligations+u.Salaries > 0
}
