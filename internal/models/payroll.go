package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Personnel is a row of the personnel table.
type Personnel struct {
	PersonnelID    string          `db:"personnel_id"`
	Name           string          `db:"name"`
	UserID         sql.NullString  `db:"user_id"`
	Position       string          `db:"position"`
	Department     string          `db:"department"`
	BaseSalary     decimal.Decimal `db:"base_salary"`
	SalaryCurrency string          `db:"salary_currency"`
	Status         string          `db:"status"`
	BankName       string          `db:"bank_name"`
	IBAN           string          `db:"iban"`
	HireDate       sql.NullTime    `db:"hire_date"`
	AuditFields
}

// Salary is a row of the salaries table with deductions and bonuses spread
// over one column per component.
type Salary struct {
	SalaryID         string          `db:"salary_id"`
	PersonnelID      string          `db:"personnel_id"`
	Month            int             `db:"month"`
	Year             int             `db:"year"`
	GrossSalary      decimal.Decimal `db:"gross_salary"`
	CurrencyCode     string          `db:"currency_code"`
	DeductionTax     decimal.Decimal `db:"deduction_tax"`
	DeductionSocial  decimal.Decimal `db:"deduction_social"`
	DeductionAdvance decimal.Decimal `db:"deduction_advance"`
	DeductionOther   decimal.Decimal `db:"deduction_other"`
	BonusPerformance decimal.Decimal `db:"bonus_performance"`
	BonusOvertime    decimal.Decimal `db:"bonus_overtime"`
	BonusOther       decimal.Decimal `db:"bonus_other"`
	TotalDeductions  decimal.Decimal `db:"total_deductions"`
	TotalBonuses     decimal.Decimal `db:"total_bonuses"`
	NetSalary        decimal.Decimal `db:"net_salary"`
	PaymentAccountID sql.NullString  `db:"payment_account_id"`
	Notes            string          `db:"notes"`
	AuditFields
}
