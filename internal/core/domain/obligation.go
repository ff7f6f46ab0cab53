package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ObligationKind separates money owed to the company from money it owes.
type ObligationKind string

const (
	ObligationKindReceivable ObligationKind = "receivable"
	ObligationKindPayable    ObligationKind = "payable"
)

// IsValid reports whether k is a known obligation kind.
func (k ObligationKind) IsValid() bool {
	return k == ObligationKindReceivable || k == ObligationKindPayable
}

// ObligationStatus is always derived from paid and total amounts.
type ObligationStatus string

const (
	ObligationStatusPending   ObligationStatus = "pending"
	ObligationStatusPartial   ObligationStatus = "partial"
	ObligationStatusCollected ObligationStatus = "collected" // settled receivable
	ObligationStatusPaid      ObligationStatus = "paid"      // settled payable
)

// SettledStatus returns the terminal status name for kind.
func (k ObligationKind) SettledStatus() ObligationStatus {
	if k == ObligationKindReceivable {
		return ObligationStatusCollected
	}
	return ObligationStatusPaid
}

// DeriveObligationStatus computes status from paid and total:
// paid == 0 is pending, 0 < paid < total is partial, paid == total is settled.
func DeriveObligationStatus(kind ObligationKind, paid, total decimal.Decimal) ObligationStatus {
	switch {
	case !paid.IsPositive():
		return ObligationStatusPending
	case paid.LessThan(total):
		return ObligationStatusPartial
	default:
		return kind.SettledStatus()
	}
}

// Obligation is a receivable or payable tracked against partial settlements.
type Obligation struct {
	ObligationID     string           `json:"obligationID"`
	Kind             ObligationKind   `json:"kind"`
	CounterpartyName string           `json:"counterpartyName"`
	CurrencyCode     string           `json:"currencyCode"`
	TotalAmount      decimal.Decimal  `json:"totalAmount"`
	PaidAmount       decimal.Decimal  `json:"paidAmount"`
	DueDate          *time.Time       `json:"dueDate,omitempty"`
	Status           ObligationStatus `json:"status"`
	OrderID          string           `json:"orderID,omitempty"`
	AccountID        string           `json:"accountID,omitempty"` // expected settlement account
	Description      string           `json:"description,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	AuditFields
}

// Outstanding is the amount still to be settled.
func (o Obligation) Outstanding() decimal.Decimal {
	return o.TotalAmount.Sub(o.PaidAmount)
}

// IsSettled reports whether the obligation is fully paid or collected.
func (o Obligation) IsSettled() bool {
	return o.Status == o.Kind.SettledStatus()
}

// IsOverdue reports whether the due date has passed without full settlement.
func (o Obligation) IsOverdue(now time.Time) bool {
	return o.DueDate != nil && o.DueDate.Before(now) && !o.IsSettled()
}

// Validate checks amounts and descriptive fields.
func (o Obligation) Validate() error {
	if !o.Kind.IsValid() {
		return apperrors.Validation("invalid obligation kind %q", o.Kind)
	}
	if strings.TrimSpace(o.CounterpartyName) == "" {
		return apperrors.Validation("counterparty name is required")
	}
	if !IsSupportedCurrency(o.CurrencyCode) {
		return apperrors.Validation("unsupported currency %q", o.CurrencyCode)
	}
	if !IsPositiveMoney(o.TotalAmount) {
		return apperrors.Validation("total amount must be greater than zero")
	}
	if o.PaidAmount.IsNegative() {
		return apperrors.Validation("paid amount cannot be negative")
	}
	if o.PaidAmount.GreaterThan(o.TotalAmount) {
		return apperrors.NewAppError(apperrors.ErrOverpayment,
			fmt.Sprintf("paid amount %s exceeds total %s", o.PaidAmount.StringFixed(MoneyScale), o.TotalAmount.StringFixed(MoneyScale)), nil)
	}
	return nil
}

// ApplyPayment adds a signed amount to PaidAmount and re-derives the status.
// Positive amounts that would exceed TotalAmount fail with ErrOverpayment and
// leave the obligation untouched.
func (o *Obligation) ApplyPayment(amount decimal.Decimal) error {
	next := RoundMoney(o.PaidAmount.Add(amount))
	if next.GreaterThan(o.TotalAmount) {
		return apperrors.NewAppError(apperrors.ErrOverpayment,
			fmt.Sprintf("payment of %s %s exceeds outstanding %s on %s %s",
				RoundMoney(amount).StringFixed(MoneyScale), o.CurrencyCode,
				o.Outstanding().StringFixed(MoneyScale), o.Kind, o.ObligationID), nil)
	}
	if next.IsNegative() {
		return apperrors.Validation("reversal of %s would make paid amount negative on %s %s",
			amount.Neg().StringFixed(MoneyScale), o.Kind, o.ObligationID)
	}
	o.PaidAmount = next
	o.Status = DeriveObligationStatus(o.Kind, o.PaidAmount, o.TotalAmount)
	return nil
}

// ObligationFilter narrows obligation listings.
type ObligationFilter struct {
	Kind             ObligationKind
	Status           ObligationStatus
	CurrencyCode     string
	CounterpartyName string
	OpenOnly         bool // pending or partial only
	OverdueOnly      bool
	Now              time.Time
}

// Matches reports whether o satisfies every set field of f.
func (f ObligationFilter) Matches(o Obligation) bool {
	if f.Kind != "" && o.Kind != f.Kind {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.CurrencyCode != "" && o.CurrencyCode != f.CurrencyCode {
		return false
	}
	if f.CounterpartyName != "" && !strings.Contains(strings.ToLower(o.CounterpartyName), strings.ToLower(f.CounterpartyName)) {
		return false
	}
	if f.OpenOnly && o.IsSettled() {
		return false
	}
	if f.OverdueOnly && !o.IsOverdue(f.Now) {
		return false
	}
	return true
}
