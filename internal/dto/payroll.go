package dto

import (
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePersonnelRequest defines the data needed to add a person to the payroll.
type CreatePersonnelRequest struct {
	Name           string                 `json:"name" binding:"required"`
	UserID         string                 `json:"userID"`
	Position       string                 `json:"position"`
	Department     string                 `json:"department"`
	BaseSalary     decimal.Decimal        `json:"baseSalary"`
	SalaryCurrency string                 `json:"salaryCurrency" binding:"required,currency"`
	Status         domain.PersonnelStatus `json:"status" binding:"omitempty,oneof=active on_leave terminated"` // defaults to active
	BankName       string                 `json:"bankName"`
	IBAN           string                 `json:"iban"`
	HireDate       *time.Time             `json:"hireDate"`
}

// UpdatePersonnelRequest carries the editable personnel fields.
type UpdatePersonnelRequest struct {
	Name           *string                 `json:"name"`
	UserID         *string                 `json:"userID"`
	Position       *string                 `json:"position"`
	Department     *string                 `json:"department"`
	BaseSalary     *decimal.Decimal        `json:"baseSalary"`
	SalaryCurrency *string                 `json:"salaryCurrency" binding:"omitempty,currency"`
	Status         *domain.PersonnelStatus `json:"status" binding:"omitempty,oneof=active on_leave terminated"`
	BankName       *string                 `json:"bankName"`
	IBAN           *string                 `json:"iban"`
	HireDate       *time.Time              `json:"hireDate"`
	Version        *int64                  `json:"version"`
}

// ListPersonnelParams defines query parameters for listing personnel.
type ListPersonnelParams struct {
	Status     domain.PersonnelStatus `form:"status" binding:"omitempty,oneof=active on_leave terminated"`
	Department string                 `form:"department"`
}

// ListPersonnelResponse wraps a list of personnel.
type ListPersonnelResponse struct {
	Personnel []domain.Personnel `json:"personnel"`
}

// CreateSalaryRequest defines the inputs of one payroll entry.
type CreateSalaryRequest struct {
	PersonnelID      string            `json:"personnelID" binding:"required"`
	Month            int               `json:"month" binding:"required,min=1,max=12"`
	Year             int               `json:"year" binding:"required,min=1900,max=9999"`
	GrossSalary      decimal.Decimal   `json:"grossSalary"`
	CurrencyCode     string            `json:"currencyCode" binding:"omitempty,currency"` // defaults to the personnel salary currency
	Deductions       domain.Deductions `json:"deductions"`
	Bonuses          domain.Bonuses    `json:"bonuses"`
	PaymentAccountID string            `json:"paymentAccountID"`
	Notes            string            `json:"notes"`
}

// UpdateSalaryRequest carries the editable salary components.
type UpdateSalaryRequest struct {
	GrossSalary      *decimal.Decimal   `json:"grossSalary"`
	Deductions       *domain.Deductions `json:"deductions"`
	Bonuses          *domain.Bonuses    `json:"bonuses"`
	PaymentAccountID *string            `json:"paymentAccountID"`
	Notes            *string            `json:"notes"`
	Version          *int64             `json:"version"`
}

// ListSalariesParams defines query parameters for listing salaries.
type ListSalariesParams struct {
	PersonnelID string `form:"personnelID"`
	Month       int    `form:"month" binding:"omitempty,min=1,max=12"`
	Year        int    `form:"year" binding:"omitempty,min=1900,max=9999"`
}

// ListSalariesResponse wraps a list of salaries.
type ListSalariesResponse struct {
	Salaries []domain.Salary `json:"salaries"`
}
