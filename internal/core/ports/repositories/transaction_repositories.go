package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by id.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionForUpdate retrieves a transaction and locks it until the
	// surrounding unit of work ends.
	FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns a page of transactions ordered by transaction
	// date, creation time and id, newest first, plus the token of the next page.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindTransactionsByAccount returns every transaction touching an account.
	FindTransactionsByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for ledger transactions
type TransactionWriter interface {
	// NextTransactionNumber allocates the next human readable number.
	NextTransactionNumber(ctx context.Context, year int) (string, error)

	// SaveTransaction persists a new transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction persists descriptive fields and status. Amounts,
	// currencies and accounts are never rewritten.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes a transaction record.
	DeleteTransaction(ctx context.Context, transactionID string) error

	// DetachObligation clears the obligation link of every transaction settling it.
	DetachObligation(ctx context.Context, obligationID, userID string, now time.Time) (int, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
