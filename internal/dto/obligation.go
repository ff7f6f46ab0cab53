package dto

import (
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateObligationRequest defines the data needed to open a receivable or payable.
// The kind comes from the route.
type CreateObligationRequest struct {
	CounterpartyName string          `json:"counterpartyName" binding:"required"`
	CurrencyCode     string          `json:"currencyCode" binding:"required,currency"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	DueDate          *time.Time      `json:"dueDate"`
	OrderID          string          `json:"orderID"`
	AccountID        string          `json:"accountID"`
	Description      string          `json:"description"`
	Notes            string          `json:"notes"`
}

// UpdateObligationRequest carries the fields of an obligation that callers may
// edit. PaidAmount changes only through linked transactions.
type UpdateObligationRequest struct {
	CounterpartyName *string          `json:"counterpartyName"`
	TotalAmount      *decimal.Decimal `json:"totalAmount"`
	DueDate          *time.Time       `json:"dueDate"`
	ClearDueDate     bool             `json:"clearDueDate"`
	OrderID          *string          `json:"orderID"`
	AccountID        *string          `json:"accountID"`
	Description      *string          `json:"description"`
	Notes            *string          `json:"notes"`
	Version          *int64           `json:"version"`
}

// ObligationResponse defines the data returned for a receivable or payable.
type ObligationResponse struct {
	domain.Obligation
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	IsOverdue         bool            `json:"isOverdue"`
}

// ToObligationResponse adds the derived fields to an obligation.
func ToObligationResponse(o *domain.Obligation, now time.Time) ObligationResponse {
	return ObligationResponse{
		Obligation:        *o,
		OutstandingAmount: o.Outstanding(),
		IsOverdue:         o.IsOverdue(now),
	}
}

// ToObligationResponses converts a slice of obligations.
func ToObligationResponses(os []domain.Obligation, now time.Time) []ObligationResponse {
	out := make([]ObligationResponse, len(os))
	for i := range os {
		out[i] = ToObligationResponse(&os[i], now)
	}
	return out
}

// ListObligationsParams defines query parameters for listing obligations.
type ListObligationsParams struct {
	Status           domain.ObligationStatus `form:"status" binding:"omitempty,oneof=pending partial collected paid"`
	CurrencyCode     string                  `form:"currency" binding:"omitempty,currency"`
	CounterpartyName string                  `form:"counterparty"`
	OpenOnly         bool                    `form:"openOnly"`
	OverdueOnly      bool                    `form:"overdueOnly"`
}

// ListObligationsResponse wraps a list of obligations.
type ListObligationsResponse struct {
	Obligations []ObligationResponse `json:"obligations"`
}
