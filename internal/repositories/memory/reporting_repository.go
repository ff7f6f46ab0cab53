package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
)

// ReportingRepository aggregates transactions held in the store.
type ReportingRepository struct {
	store *Store
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

func (r *ReportingRepository) SumTransactions(ctx context.Context, from, to *time.Time) ([]domain.TransactionTotalRow, error) {
	filter := domain.TransactionFilter{Status: domain.TransactionStatusCompleted, StartDate: from, EndDate: to}
	return r.sum(ctx, filter, func(domain.Transaction) int { return 0 })
}

func (r *ReportingRepository) SumTransactionsByMonth(ctx context.Context, year int) ([]domain.TransactionTotalRow, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	filter := domain.TransactionFilter{Status: domain.TransactionStatusCompleted, StartDate: &start, EndDate: &end}
	return r.sum(ctx, filter, func(t domain.Transaction) int { return int(t.TransactionDate.UTC().Month()) })
}

func (r *ReportingRepository) sum(ctx context.Context, filter domain.TransactionFilter, month func(domain.Transaction) int) ([]domain.TransactionTotalRow, error) {
	type key struct {
		typ      domain.TransactionType
		currency string
		month    int
	}
	buckets := map[key]*domain.TransactionTotalRow{}
	err := r.store.read(ctx, func() error {
		for _, txn := range r.store.transactions {
			if txn.Type != domain.TransactionTypeIncome && txn.Type != domain.TransactionTypeExpense {
				continue
			}
			if !filter.Matches(txn) {
				continue
			}
			_, amount, currency := txn.PrimaryLeg()
			k := key{txn.Type, currency, month(txn)}
			row, ok := buckets[k]
			if !ok {
				row = &domain.TransactionTotalRow{Type: k.typ, CurrencyCode: k.currency, Month: k.month}
				buckets[k] = row
			}
			row.Total = row.Total.Add(amount)
			row.Count++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TransactionTotalRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.CurrencyCode != b.CurrencyCode {
			return a.CurrencyCode < b.CurrencyCode
		}
		return a.Type < b.Type
	})
	return rows, nil
}
