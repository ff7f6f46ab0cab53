package services

import (
	"context"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/utils/accounting"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves accounts matching the filter.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account with zero balances.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive and drops its default flag.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error

	// DeleteAccount removes an account nothing references.
	DeleteAccount(ctx context.Context, accountID string, userID string) error
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// ReconcileAccount compares stored balances with the sum of completed transactions.
	ReconcileAccount(ctx context.Context, accountID string) ([]accounting.Discrepancy, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
