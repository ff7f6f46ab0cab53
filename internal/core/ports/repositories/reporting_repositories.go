package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
)

// ReportingRepository aggregates completed income and expense transactions.
type ReportingRepository interface {
	// SumTransactions totals completed income and expense per type and
	// currency. Nil bounds are open; both bounds are inclusive.
	SumTransactions(ctx context.Context, from, to *time.Time) ([]domain.TransactionTotalRow, error)

	// SumTransactionsByMonth totals completed income and expense per type,
	// currency and calendar month (UTC) of the given year.
	SumTransactionsByMonth(ctx context.Context, year int) ([]domain.TransactionTotalRow, error)
}
