package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// reportingService implements the ReportingService interface. Reports never
// add amounts of different currencies together.
type reportingService struct {
	BaseService
	reportingRepo  portsrepo.ReportingRepository
	accountRepo    portsrepo.AccountReader
	obligationRepo portsrepo.ObligationReader
	personnelRepo  portsrepo.PersonnelRepositoryFacade
	cache          portssvc.ReportCache
	flight         singleflight.Group
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportCache serves repeated report requests from cache.
func WithReportCache(cache portssvc.ReportCache) ReportingServiceOption {
	return func(s *reportingService) {
		s.cache = cache
	}
}

// WithReportingBase applies shared service options to the reporting service.
func WithReportingBase(options ...ServiceOption) ReportingServiceOption {
	return func(s *reportingService) {
		for _, option := range options {
			option(&s.BaseService)
		}
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repos portsrepo.RepositoryProvider, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		BaseService:    newBaseService(repos.TxManager, nil),
		reportingRepo:  repos.ReportingRepo,
		accountRepo:    repos.AccountRepo,
		obligationRepo: repos.ObligationRepo,
		personnelRepo:  repos.PersonnelRepo,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) GetIncomeExpenseSummary(ctx context.Context, from, to *time.Time) (*domain.IncomeExpenseSummary, error) {
	to = endOfDay(to)
	key := "income_expense:" + formatBound(from) + ":" + formatBound(to)
	var out domain.IncomeExpenseSummary
	err := s.cached(ctx, key, &out, func(ctx context.Context) (any, error) {
		rows, err := s.reportingRepo.SumTransactions(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to sum transactions: %w", err)
		}
		summary := summarizeIncomeExpense(rows)
		summary.StartDate, summary.EndDate = from, to
		return summary, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build income/expense summary")
		return nil, err
	}
	return &out, nil
}

func (s *reportingService) GetReceivablePayableSummary(ctx context.Context) (*domain.ReceivablePayableSummary, error) {
	now := s.now()
	var out domain.ReceivablePayableSummary
	err := s.cached(ctx, "obligations:"+now.Format("2006-01-02"), &out, func(ctx context.Context) (any, error) {
		obligations, err := s.obligationRepo.ListObligations(ctx, domain.ObligationFilter{Now: now})
		if err != nil {
			return nil, fmt.Errorf("failed to list obligations: %w", err)
		}
		return domain.ReceivablePayableSummary{
			Receivables: domain.SummarizeObligations(domain.ObligationKindReceivable, obligations, now),
			Payables:    domain.SummarizeObligations(domain.ObligationKindPayable, obligations, now),
		}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build receivable/payable summary")
		return nil, err
	}
	return &out, nil
}

func (s *reportingService) GetPersonnelSummary(ctx context.Context) (*domain.PersonnelSummary, error) {
	var out domain.PersonnelSummary
	err := s.cached(ctx, "personnel", &out, func(ctx context.Context) (any, error) {
		people, err := s.personnelRepo.ListPersonnel(ctx, domain.PersonnelFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list personnel: %w", err)
		}
		summary := domain.PersonnelSummary{
			TotalCount:     len(people),
			CountsByStatus: map[domain.PersonnelStatus]int{},
		}
		for _, p := range people {
			summary.CountsByStatus[p.Status]++
		}
		summary.MonthlySalaryCost = domain.SortCurrencyAmounts(monthlyCost(people))
		return summary, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build personnel summary")
		return nil, err
	}
	return &out, nil
}

func (s *reportingService) GetTotalBalance(ctx context.Context) (*domain.TotalBalance, error) {
	var out domain.TotalBalance
	err := s.cached(ctx, "total_balance", &out, func(ctx context.Context) (any, error) {
		accounts, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{ActiveOnly: true})
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		totals := map[string]decimal.Decimal{}
		for _, acc := range accounts {
			for code, amt := range acc.Balances {
				totals[code] = totals[code].Add(amt)
			}
		}
		return domain.TotalBalance{AccountCount: len(accounts), Balances: domain.SortCurrencyAmounts(totals)}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build total balance")
		return nil, err
	}
	return &out, nil
}

func (s *reportingService) GetMonthlyTrend(ctx context.Context, year int, currencyCode string) ([]domain.MonthlyTrendEntry, error) {
	if year == 0 {
		year = s.now().Year()
	}
	currencyCode = domain.NormalizeCurrencyCode(currencyCode)
	key := fmt.Sprintf("monthly_trend:%d:%s", year, currencyCode)
	var out []domain.MonthlyTrendEntry
	err := s.cached(ctx, key, &out, func(ctx context.Context) (any, error) {
		rows, err := s.reportingRepo.SumTransactionsByMonth(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("failed to sum transactions by month: %w", err)
		}
		return buildMonthlyTrend(year, currencyCode, rows), nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build monthly trend", slog.Int("year", year))
		return nil, err
	}
	return out, nil
}

// GetDashboard runs every report concurrently; the first failure cancels the rest.
func (s *reportingService) GetDashboard(ctx context.Context, from, to *time.Time, year int) (*domain.Dashboard, error) {
	var dash domain.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.GetIncomeExpenseSummary(gctx, from, to)
		if err == nil {
			dash.IncomeExpense = *r
		}
		return err
	})
	g.Go(func() error {
		r, err := s.GetReceivablePayableSummary(gctx)
		if err == nil {
			dash.Obligations = *r
		}
		return err
	})
	g.Go(func() error {
		r, err := s.GetPersonnelSummary(gctx)
		if err == nil {
			dash.Personnel = *r
		}
		return err
	})
	g.Go(func() error {
		r, err := s.GetTotalBalance(gctx)
		if err == nil {
			dash.TotalBalance = *r
		}
		return err
	})
	g.Go(func() error {
		r, err := s.GetMonthlyTrend(gctx, year, "")
		if err == nil {
			dash.MonthlyTrend = r
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}

// cached serves key from the report cache when present. Concurrent misses for
// the same key share one computation. Cache failures only cost a recompute.
func (s *reportingService) cached(ctx context.Context, key string, dest any, compute func(ctx context.Context) (any, error)) error {
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, dest)
		if err != nil {
			s.LogDebug(ctx, "Report cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		s.Metrics.RecordCacheLookup(hit)
		if hit {
			return nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		result, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, result); err != nil {
				s.LogDebug(ctx, "Report cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
		return result, nil
	})
	if err != nil {
		return err
	}
	return assignReport(dest, v)
}

func assignReport(dest any, v any) error {
	switch d := dest.(type) {
	case *domain.IncomeExpenseSummary:
		*d = v.(domain.IncomeExpenseSummary)
	case *domain.ReceivablePayableSummary:
		*d = v.(domain.ReceivablePayableSummary)
	case *domain.PersonnelSummary:
		*d = v.(domain.PersonnelSummary)
	case *domain.TotalBalance:
		*d = v.(domain.TotalBalance)
	case *[]domain.MonthlyTrendEntry:
		*d = v.([]domain.MonthlyTrendEntry)
	default:
		return fmt.Errorf("unsupported report type %T", dest)
	}
	return nil
}

func summarizeIncomeExpense(rows []domain.TransactionTotalRow) domain.IncomeExpenseSummary {
	lines := map[string]*domain.IncomeExpenseLine{}
	for _, row := range rows {
		line, ok := lines[row.CurrencyCode]
		if !ok {
			line = &domain.IncomeExpenseLine{CurrencyCode: row.CurrencyCode}
			lines[row.CurrencyCode] = line
		}
		switch row.Type {
		case domain.TransactionTypeIncome:
			line.Income = line.Income.Add(row.Total)
			line.IncomeCount += row.Count
		case domain.TransactionTypeExpense:
			line.Expense = line.Expense.Add(row.Total)
			line.ExpenseCount += row.Count
		}
	}
	summary := domain.IncomeExpenseSummary{Currencies: make([]domain.IncomeExpenseLine, 0, len(lines))}
	for _, l := range lines {
		l.Income = domain.RoundMoney(l.Income)
		l.Expense = domain.RoundMoney(l.Expense)
		l.Net = l.Income.Sub(l.Expense)
		summary.Currencies = append(summary.Currencies, *l)
	}
	sort.Slice(summary.Currencies, func(i, j int) bool {
		return summary.Currencies[i].CurrencyCode < summary.Currencies[j].CurrencyCode
	})
	return summary
}

// buildMonthlyTrend returns twelve months, each carrying a line for every
// currency seen in the year (zeros where a month had no activity).
func buildMonthlyTrend(year int, currencyCode string, rows []domain.TransactionTotalRow) []domain.MonthlyTrendEntry {
	currencies := map[string]struct{}{}
	if currencyCode != "" {
		currencies[currencyCode] = struct{}{}
	}
	type bucket struct{ income, expense decimal.Decimal }
	buckets := map[int]map[string]*bucket{}
	for _, row := range rows {
		if currencyCode != "" && row.CurrencyCode != currencyCode {
			continue
		}
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		currencies[row.CurrencyCode] = struct{}{}
		byCurrency, ok := buckets[row.Month]
		if !ok {
			byCurrency = map[string]*bucket{}
			buckets[row.Month] = byCurrency
		}
		b, ok := byCurrency[row.CurrencyCode]
		if !ok {
			b = &bucket{}
			byCurrency[row.CurrencyCode] = b
		}
		switch row.Type {
		case domain.TransactionTypeIncome:
			b.income = b.income.Add(row.Total)
		case domain.TransactionTypeExpense:
			b.expense = b.expense.Add(row.Total)
		}
	}

	codes := make([]string, 0, len(currencies))
	for c := range currencies {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	trend := make([]domain.MonthlyTrendEntry, 12)
	for m := 1; m <= 12; m++ {
		entry := domain.MonthlyTrendEntry{Year: year, Month: m, Currencies: make([]domain.MonthlyTrendLine, 0, len(codes))}
		for _, code := range codes {
			line := domain.MonthlyTrendLine{CurrencyCode: code, Income: decimal.Zero, Expense: decimal.Zero}
			if b, ok := buckets[m][code]; ok {
				line.Income = domain.RoundMoney(b.income)
				line.Expense = domain.RoundMoney(b.expense)
			}
			line.Net = line.Income.Sub(line.Expense)
			entry.Currencies = append(entry.Currencies, line)
		}
		trend[m-1] = entry
	}
	return trend
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
