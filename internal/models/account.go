package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table. Supported currencies are not a
// column: they are the set of account_balances rows of the account.
type Account struct {
	AccountID     string `db:"account_id"`
	Name          string `db:"name"`
	AccountType   string `db:"account_type"`
	CurrencyMode  string `db:"currency_mode"`
	CurrencyCode  string `db:"currency_code"`
	BankName      string `db:"bank_name"`
	IBAN          string `db:"iban"`
	AccountNumber string `db:"account_number"`
	IsDefault     bool   `db:"is_default"`
	IsActive      bool   `db:"is_active"`
	Description   string `db:"description"`
	Notes         string `db:"notes"`
	AuditFields
}

// AccountBalance is a row of the account_balances table.
type AccountBalance struct {
	AccountID     string          `db:"account_id"`
	CurrencyCode  string          `db:"currency_code"`
	Amount        decimal.Decimal `db:"amount"`
	Version       int64           `db:"version"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
	LastUpdatedBy string          `db:"last_updated_by"`
}
