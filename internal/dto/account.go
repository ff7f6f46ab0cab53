package dto

import (
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/utils/accounting"
	"github.com/SscSPs/mfg_ledger/internal/utils/money"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name                string              `json:"name" binding:"required"`
	AccountType         domain.AccountType  `json:"accountType" binding:"required,oneof=bank cash credit_card other"`
	CurrencyMode        domain.CurrencyMode `json:"currencyMode" binding:"omitempty,oneof=single multi"` // defaults to single
	CurrencyCode        string              `json:"currencyCode" binding:"required,currency"`
	SupportedCurrencies []string            `json:"supportedCurrencies" binding:"omitempty,dive,currency"`
	BankName            string              `json:"bankName"`
	IBAN                string              `json:"iban"`
	AccountNumber       string              `json:"accountNumber"`
	IsDefault           bool                `json:"isDefault"`
	Description         string              `json:"description"`
	Notes               string              `json:"notes"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name                *string              `json:"name"`
	AccountType         *domain.AccountType  `json:"accountType" binding:"omitempty,oneof=bank cash credit_card other"`
	CurrencyMode        *domain.CurrencyMode `json:"currencyMode" binding:"omitempty,oneof=single multi"`
	CurrencyCode        *string              `json:"currencyCode" binding:"omitempty,currency"`
	SupportedCurrencies *[]string            `json:"supportedCurrencies"`
	BankName            *string              `json:"bankName"`
	IBAN                *string              `json:"iban"`
	AccountNumber       *string              `json:"accountNumber"`
	IsDefault           *bool                `json:"isDefault"`
	IsActive            *bool                `json:"isActive"`
	Description         *string              `json:"description"`
	Notes               *string              `json:"notes"`
	Version             *int64               `json:"version"` // optional optimistic check
}

// BalanceResponse is one currency balance of an account.
type BalanceResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Formatted    string          `json:"formatted"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID           string              `json:"accountID"`
	Name                string              `json:"name"`
	AccountType         domain.AccountType  `json:"accountType"`
	CurrencyMode        domain.CurrencyMode `json:"currencyMode"`
	CurrencyCode        string              `json:"currencyCode"`
	SupportedCurrencies []string            `json:"supportedCurrencies"`
	Balances            []BalanceResponse   `json:"balances"`
	BankName            string              `json:"bankName,omitempty"`
	IBAN                string              `json:"iban,omitempty"`
	AccountNumber       string              `json:"accountNumber,omitempty"`
	IsDefault           bool                `json:"isDefault"`
	IsActive            bool                `json:"isActive"`
	Description         string              `json:"description,omitempty"`
	Notes               string              `json:"notes,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	CreatedBy           string              `json:"createdBy"`
	LastUpdatedAt       time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy       string              `json:"lastUpdatedBy"`
	Version             int64               `json:"version"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	balances := make([]BalanceResponse, 0, len(acc.SupportedCurrencies))
	for _, code := range acc.SupportedCurrencies {
		amt := acc.Balances[code]
		balances = append(balances, BalanceResponse{
			CurrencyCode: code,
			Amount:       amt,
			Formatted:    money.FormatCurrency(amt, code),
		})
	}
	return AccountResponse{
		AccountID:           acc.AccountID,
		Name:                acc.Name,
		AccountType:         acc.AccountType,
		CurrencyMode:        acc.CurrencyMode,
		CurrencyCode:        acc.CurrencyCode,
		SupportedCurrencies: acc.SupportedCurrencies,
		Balances:            balances,
		BankName:            acc.BankName,
		IBAN:                acc.IBAN,
		AccountNumber:       acc.AccountNumber,
		IsDefault:           acc.IsDefault,
		IsActive:            acc.IsActive,
		Description:         acc.Description,
		Notes:               acc.Notes,
		CreatedAt:           acc.CreatedAt,
		CreatedBy:           acc.CreatedBy,
		LastUpdatedAt:       acc.LastUpdatedAt,
		LastUpdatedBy:       acc.LastUpdatedBy,
		Version:             acc.Version,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	AccountType  domain.AccountType `form:"type" binding:"omitempty,oneof=bank cash credit_card other"`
	CurrencyCode string             `form:"currency" binding:"omitempty,currency"`
	ActiveOnly   bool               `form:"activeOnly"`
	Limit        int                `form:"limit,default=50" binding:"min=0,max=500"`
	Offset       int                `form:"offset,default=0" binding:"min=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ReconcileAccountResponse reports whether stored balances match the ledger.
type ReconcileAccountResponse struct {
	AccountID     string                   `json:"accountID"`
	Consistent    bool                     `json:"consistent"`
	Discrepancies []accounting.Discrepancy `json:"discrepancies"`
}
