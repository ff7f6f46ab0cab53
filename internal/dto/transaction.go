package dto

import (
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/utils/money"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the flat wire form of every transaction type.
// Income and expense use AccountID/Amount/CurrencyCode; transfer and exchange
// use the From/To fields.
type CreateTransactionRequest struct {
	Type            domain.TransactionType   `json:"type" binding:"required,oneof=income expense transfer exchange"`
	Status          domain.TransactionStatus `json:"status" binding:"omitempty,oneof=pending completed"` // defaults to completed
	TransactionDate *time.Time               `json:"transactionDate"`                                    // defaults to now

	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode" binding:"omitempty,currency"` // defaults to the account's primary currency
	ReceivableID string          `json:"receivableID"`
	PayableID    string          `json:"payableID"`

	FromAccountID    string           `json:"fromAccountID"`
	ToAccountID      string           `json:"toAccountID"`
	FromAmount       decimal.Decimal  `json:"fromAmount"`
	FromCurrencyCode string           `json:"fromCurrencyCode" binding:"omitempty,currency"`
	ToAmount         *decimal.Decimal `json:"toAmount"` // derived from the rate when omitted
	ToCurrencyCode   string           `json:"toCurrencyCode" binding:"omitempty,currency"`
	ExchangeRate     *decimal.Decimal `json:"exchangeRate"`

	Category    string `json:"category"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
}

// UpdateTransactionRequest carries the non-balance fields a transaction may change.
type UpdateTransactionRequest struct {
	TransactionDate *time.Time `json:"transactionDate"`
	Category        *string    `json:"category"`
	Description     *string    `json:"description"`
	Reference       *string    `json:"reference"`
	Notes           *string    `json:"notes"`
}

// ChangeTransactionStatusRequest moves a pending transaction forward.
type ChangeTransactionStatusRequest struct {
	Status domain.TransactionStatus `json:"status" binding:"required,oneof=completed cancelled"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID     string                   `json:"transactionID"`
	TransactionNumber string                   `json:"transactionNumber"`
	Type              domain.TransactionType   `json:"type"`
	Status            domain.TransactionStatus `json:"status"`
	TransactionDate   time.Time                `json:"transactionDate"`

	AccountID       string          `json:"accountID"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	FormattedAmount string          `json:"formattedAmount"`
	ReceivableID    string          `json:"receivableID,omitempty"`
	PayableID       string          `json:"payableID,omitempty"`

	ToAccountID    string           `json:"toAccountID,omitempty"`
	ToAmount       *decimal.Decimal `json:"toAmount,omitempty"`
	ToCurrencyCode string           `json:"toCurrencyCode,omitempty"`
	ExchangeRate   *decimal.Decimal `json:"exchangeRate,omitempty"`

	Category      string    `json:"category,omitempty"`
	Description   string    `json:"description,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToTransactionResponse flattens a domain.Transaction into its wire form.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	accountID, amount, currency := txn.PrimaryLeg()
	resp := TransactionResponse{
		TransactionID:     txn.TransactionID,
		TransactionNumber: txn.TransactionNumber,
		Type:              txn.Type,
		Status:            txn.Status,
		TransactionDate:   txn.TransactionDate,
		AccountID:         accountID,
		Amount:            amount,
		CurrencyCode:      currency,
		FormattedAmount:   money.FormatCurrency(amount, currency),
		Category:          txn.Category,
		Description:       txn.Description,
		Reference:         txn.Reference,
		Notes:             txn.Notes,
		CreatedAt:         txn.CreatedAt,
		CreatedBy:         txn.CreatedBy,
		LastUpdatedAt:     txn.LastUpdatedAt,
		LastUpdatedBy:     txn.LastUpdatedBy,
	}
	switch d := txn.Details.(type) {
	case domain.IncomeDetails:
		resp.ReceivableID = d.ReceivableID
	case domain.ExpenseDetails:
		resp.PayableID = d.PayableID
	case domain.TransferDetails:
		toAmount := d.ToAmount
		resp.ToAccountID = d.ToAccountID
		resp.ToAmount = &toAmount
		resp.ToCurrencyCode = d.ToCurrencyCode
		resp.ExchangeRate = d.ExchangeRate
	case domain.ExchangeDetails:
		toAmount, rate := d.ToAmount, d.ExchangeRate
		resp.ToAccountID = d.ToAccountID
		resp.ToAmount = &toAmount
		resp.ToCurrencyCode = d.ToCurrencyCode
		resp.ExchangeRate = &rate
	}
	return resp
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Type         domain.TransactionType   `form:"type" binding:"omitempty,oneof=income expense transfer exchange"`
	Status       domain.TransactionStatus `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	AccountID    string                   `form:"accountID"`
	ObligationID string                   `form:"obligationID"`
	Category     string                   `form:"category"`
	StartDate    *time.Time               `form:"startDate" time_format:"2006-01-02"`
	EndDate      *time.Time               `form:"endDate" time_format:"2006-01-02"`
	Limit        int                      `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken    *string                  `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
