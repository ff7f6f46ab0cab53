package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account, balances included.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are an ErrNotFound.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts matching the filter, ordered by name.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// GetAccountUsage counts the ledger records that reference an account.
	GetAccountUsage(ctx context.Context, accountID string) (domain.AccountUsage, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account together with its zero balances.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates descriptive fields, flags and the supported currency
	// set. Balance rows are added for new currencies and removed for dropped
	// ones. Fails with ErrConcurrencyConflict when account.Version is stale.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// ClearDefaultAccount unsets isDefault on every account of the currency except keepAccountID.
	ClearDefaultAccount(ctx context.Context, currencyCode, keepAccountID, userID string, now time.Time) error

	// DeleteAccount removes an account and its balance rows.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountBalanceWriter is the storage half of the balance mutator.
type AccountBalanceWriter interface {
	// ApplyBalanceDeltas adds every delta to its (account, currency) balance,
	// in the given order, all or nothing. A missing balance row fails with
	// ErrUnsupportedCurrency, a missing account with ErrNotFound.
	ApplyBalanceDeltas(ctx context.Context, deltas []domain.BalanceDelta, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceWriter
}
