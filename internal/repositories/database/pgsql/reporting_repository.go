package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SumTransactions totals completed income and expense per type and currency.
func (r *reportingRepository) SumTransactions(ctx context.Context, from, to *time.Time) ([]domain.TransactionTotalRow, error) {
	var w whereBuilder
	w.add("status = 'completed'")
	w.add("transaction_type IN ('income', 'expense')")
	if from != nil {
		w.add("transaction_date >= ?", *from)
	}
	if to != nil {
		w.add("transaction_date <= ?", *to)
	}
	query := `
		SELECT transaction_type, from_currency_code, 0 AS month, SUM(from_amount), COUNT(*)
		FROM transactions` + w.clause() + `
		GROUP BY transaction_type, from_currency_code
		ORDER BY from_currency_code, transaction_type
	`
	return r.queryTotals(ctx, query, w.args...)
}

// SumTransactionsByMonth totals completed income and expense per type,
// currency and UTC calendar month of year.
func (r *reportingRepository) SumTransactionsByMonth(ctx context.Context, year int) ([]domain.TransactionTotalRow, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	query := `
		SELECT transaction_type, from_currency_code,
			EXTRACT(MONTH FROM transaction_date AT TIME ZONE 'UTC')::int AS month,
			SUM(from_amount), COUNT(*)
		FROM transactions
		WHERE status = 'completed'
			AND transaction_type IN ('income', 'expense')
			AND transaction_date >= $1 AND transaction_date < $2
		GROUP BY transaction_type, from_currency_code, month
		ORDER BY month, from_currency_code, transaction_type
	`
	return r.queryTotals(ctx, query, start, start.AddDate(1, 0, 0))
}

func (r *reportingRepository) queryTotals(ctx context.Context, query string, args ...any) ([]domain.TransactionTotalRow, error) {
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transaction totals: %w", err)
	}
	defer rows.Close()

	result := []domain.TransactionTotalRow{}
	for rows.Next() {
		var row domain.TransactionTotalRow
		var txnType string
		if err := rows.Scan(&txnType, &row.CurrencyCode, &row.Month, &row.Total, &row.Count); err != nil {
			return nil, fmt.Errorf("error scanning transaction total row: %w", err)
		}
		row.Type = domain.TransactionType(txnType)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction total rows: %w", err)
	}
	return result, nil
}
