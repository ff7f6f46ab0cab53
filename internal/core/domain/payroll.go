package domain

import (
	"strings"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PersonnelStatus is the employment state of a person on the payroll.
type PersonnelStatus string

const (
	PersonnelStatusActive     PersonnelStatus = "active"
	PersonnelStatusOnLeave    PersonnelStatus = "on_leave"
	PersonnelStatusTerminated PersonnelStatus = "terminated"
)

// IsValid reports whether s is a known personnel status.
func (s PersonnelStatus) IsValid() bool {
	switch s {
	case PersonnelStatusActive, PersonnelStatusOnLeave, PersonnelStatusTerminated:
		return true
	}
	return false
}

// Personnel is an employee record.
type Personnel struct {
	PersonnelID    string          `json:"personnelID"`
	Name           string          `json:"name"`
	UserID         string          `json:"userID,omitempty"` // optional link to an app user, unique
	Position       string          `json:"position,omitempty"`
	Department     string          `json:"department,omitempty"`
	BaseSalary     decimal.Decimal `json:"baseSalary"`
	SalaryCurrency string          `json:"salaryCurrency"`
	Status         PersonnelStatus `json:"status"`
	BankName       string          `json:"bankName,omitempty"`
	IBAN           string          `json:"iban,omitempty"`
	HireDate       *time.Time      `json:"hireDate,omitempty"`
	AuditFields
}

// Validate checks the personnel record.
func (p Personnel) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.Validation("personnel name is required")
	}
	if p.BaseSalary.IsNegative() {
		return apperrors.Validation("base salary cannot be negative")
	}
	if !IsSupportedCurrency(p.SalaryCurrency) {
		return apperrors.Validation("unsupported currency %q", p.SalaryCurrency)
	}
	if !p.Status.IsValid() {
		return apperrors.Validation("invalid personnel status %q", p.Status)
	}
	return nil
}

// PersonnelFilter narrows personnel listings.
type PersonnelFilter struct {
	Status     PersonnelStatus
	Department string
}

// Matches reports whether p satisfies every set field of f.
func (f PersonnelFilter) Matches(p Personnel) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Department != "" && !strings.EqualFold(p.Department, f.Department) {
		return false
	}
	return true
}

// Deductions are amounts withheld from gross salary.
type Deductions struct {
	Tax            decimal.Decimal `json:"tax"`
	SocialSecurity decimal.Decimal `json:"socialSecurity"`
	Advance        decimal.Decimal `json:"advance"`
	Other          decimal.Decimal `json:"other"`
}

// Total sums the deduction components.
func (d Deductions) Total() decimal.Decimal {
	return RoundMoney(d.Tax.Add(d.SocialSecurity).Add(d.Advance).Add(d.Other))
}

func (d Deductions) rounded() Deductions {
	return Deductions{RoundMoney(d.Tax), RoundMoney(d.SocialSecurity), RoundMoney(d.Advance), RoundMoney(d.Other)}
}

func (d Deductions) anyNegative() bool {
	return d.Tax.IsNegative() || d.SocialSecurity.IsNegative() || d.Advance.IsNegative() || d.Other.IsNegative()
}

// Bonuses are amounts added on top of gross salary.
type Bonuses struct {
	Performance decimal.Decimal `json:"performance"`
	Overtime    decimal.Decimal `json:"overtime"`
	Other       decimal.Decimal `json:"other"`
}

// Total sums the bonus components.
func (b Bonuses) Total() decimal.Decimal {
	return RoundMoney(b.Performance.Add(b.Overtime).Add(b.Other))
}

func (b Bonuses) rounded() Bonuses {
	return Bonuses{RoundMoney(b.Performance), RoundMoney(b.Overtime), RoundMoney(b.Other)}
}

func (b Bonuses) anyNegative() bool {
	return b.Performance.IsNegative() || b.Overtime.IsNegative() || b.Other.IsNegative()
}

// CalculateNetSalary returns gross - deductions + bonuses rounded to the money scale.
func CalculateNetSalary(gross decimal.Decimal, deductions Deductions, bonuses Bonuses) decimal.Decimal {
	return RoundMoney(RoundMoney(gross).Sub(deductions.Total()).Add(bonuses.Total()))
}

// Salary is one payroll entry for a person and month. It never moves money.
type Salary struct {
	SalaryID         string          `json:"salaryID"`
	PersonnelID      string          `json:"personnelID"`
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	GrossSalary      decimal.Decimal `json:"grossSalary"`
	CurrencyCode     string          `json:"currencyCode"`
	Deductions       Deductions      `json:"deductions"`
	Bonuses          Bonuses         `json:"bonuses"`
	TotalDeductions  decimal.Decimal `json:"totalDeductions"`
	TotalBonuses     decimal.Decimal `json:"totalBonuses"`
	NetSalary        decimal.Decimal `json:"netSalary"`
	PaymentAccountID string          `json:"paymentAccountID,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	AuditFields
}

// Recompute rounds the components and refreshes the derived totals.
func (s *Salary) Recompute() {
	s.GrossSalary = RoundMoney(s.GrossSalary)
	s.Deductions = s.Deductions.rounded()
	s.Bonuses = s.Bonuses.rounded()
	s.TotalDeductions = s.Deductions.Total()
	s.TotalBonuses = s.Bonuses.Total()
	s.NetSalary = CalculateNetSalary(s.GrossSalary, s.Deductions, s.Bonuses)
}

// Validate checks the period, amounts and currency.
func (s Salary) Validate() error {
	if strings.TrimSpace(s.PersonnelID) == "" {
		return apperrors.Validation("personnel id is required")
	}
	if s.Month < 1 || s.Month > 12 {
		return apperrors.Validation("month must be between 1 and 12")
	}
	if s.Year < 1900 || s.Year > 9999 {
		return apperrors.Validation("year %d is out of range", s.Year)
	}
	if s.GrossSalary.IsNegative() {
		return apperrors.Validation("gross salary cannot be negative")
	}
	if s.Deductions.anyNegative() {
		return apperrors.Validation("deductions cannot be negative")
	}
	if s.Bonuses.anyNegative() {
		return apperrors.Validation("bonuses cannot be negative")
	}
	if !IsSupportedCurrency(s.CurrencyCode) {
		return apperrors.Validation("unsupported currency %q", s.CurrencyCode)
	}
	return nil
}

// SalaryFilter narrows salary listings. Zero values match everything.
type SalaryFilter struct {
	PersonnelID string
	Month       int
	Year        int
}

// Matches reports whether s satisfies every set field of f.
func (f SalaryFilter) Matches(s Salary) bool {
	if f.PersonnelID != "" && s.PersonnelID != f.PersonnelID {
		return false
	}
	if f.Month != 0 && s.Month != f.Month {
		return false
	}
	if f.Year != 0 && s.Year != f.Year {
		return false
	}
	return true
}
