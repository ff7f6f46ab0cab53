package services

import (
	"context"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
)

// ReportingService defines the read-only financial reports. Totals are
// always per currency; amounts in different currencies are never added.
type ReportingService interface {
	GetIncomeExpenseSummary(ctx context.Context, from, to *time.Time) (*domain.IncomeExpenseSummary, error)
	GetReceivablePayableSummary(ctx context.Context) (*domain.ReceivablePayableSummary, error)
	GetPersonnelSummary(ctx context.Context) (*domain.PersonnelSummary, error)
	GetTotalBalance(ctx context.Context) (*domain.TotalBalance, error)
	// GetMonthlyTrend returns twelve entries; a non-empty currencyCode keeps only that currency.
	GetMonthlyTrend(ctx context.Context, year int, currencyCode string) ([]domain.MonthlyTrendEntry, error)
	GetDashboard(ctx context.Context, from, to *time.Time, year int) (*domain.Dashboard, error)
}
