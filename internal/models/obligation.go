package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Obligation is a row of the obligations table.
type Obligation struct {
	ObligationID     string          `db:"obligation_id"`
	Kind             string          `db:"kind"`
	CounterpartyName string          `db:"counterparty_name"`
	CurrencyCode     string          `db:"currency_code"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	PaidAmount       decimal.Decimal `db:"paid_amount"`
	DueDate          sql.NullTime    `db:"due_date"`
	Status           string          `db:"status"`
	OrderID          string          `db:"order_id"`
	AccountID        sql.NullString  `db:"account_id"`
	Description      string          `db:"description"`
	Notes            string          `db:"notes"`
	AuditFields
}
