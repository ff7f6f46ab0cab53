package services

import (
	"context"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/dto"
)

// TransactionReaderSvc defines read operations for ledger transactions
type TransactionReaderSvc interface {
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines the operations that move money
type TransactionWriterSvc interface {
	// CreateTransaction validates and records a transaction. Completed
	// transactions update balances and linked obligations atomically.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// UpdateTransaction changes non-balance fields only.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)

	// ChangeTransactionStatus completes or cancels a pending transaction.
	ChangeTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, userID string) (*domain.Transaction, error)

	// DeleteTransaction reverses a completed transaction's effects and removes it.
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
