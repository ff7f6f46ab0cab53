package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table. The typed details of the
// domain transaction are flattened into a source leg, an optional
// destination leg and an optional obligation link.
type Transaction struct {
	TransactionID     string              `db:"transaction_id"`
	TransactionNumber string              `db:"transaction_number"`
	TransactionType   string              `db:"transaction_type"`
	Status            string              `db:"status"`
	TransactionDate   time.Time           `db:"transaction_date"`
	FromAccountID     string              `db:"from_account_id"`
	FromAmount        decimal.Decimal     `db:"from_amount"`
	FromCurrencyCode  string              `db:"from_currency_code"`
	ToAccountID       sql.NullString      `db:"to_account_id"`
	ToAmount          decimal.NullDecimal `db:"to_amount"`
	ToCurrencyCode    sql.NullString      `db:"to_currency_code"`
	ExchangeRate      decimal.NullDecimal `db:"exchange_rate"`
	ObligationID      sql.NullString      `db:"obligation_id"`
	Category          string              `db:"category"`
	Description       string              `db:"description"`
	Reference         string              `db:"reference"`
	Notes             string              `db:"notes"`
	AuditFields
}
