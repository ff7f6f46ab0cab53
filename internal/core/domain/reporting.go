package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyAmount is an amount in a single currency.
type CurrencyAmount struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

// TransactionTotalRow is one aggregate bucket of completed transactions.
// Month is zero when the query is not grouped by month.
type TransactionTotalRow struct {
	Type         TransactionType `json:"type"`
	CurrencyCode string          `json:"currencyCode"`
	Month        int             `json:"month,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

// IncomeExpenseLine holds the income/expense totals of one currency.
type IncomeExpenseLine struct {
	CurrencyCode string          `json:"currencyCode"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
	IncomeCount  int             `json:"incomeCount"`
	ExpenseCount int             `json:"expenseCount"`
}

// IncomeExpenseSummary reports completed income and expense per currency.
type IncomeExpenseSummary struct {
	StartDate  *time.Time          `json:"startDate,omitempty"`
	EndDate    *time.Time          `json:"endDate,omitempty"`
	Currencies []IncomeExpenseLine `json:"currencies"`
}

// ObligationSummaryLine holds the receivable or payable totals of one currency.
type ObligationSummaryLine struct {
	CurrencyCode      string          `json:"currencyCode"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"` // pending + partial
	OverdueAmount     decimal.Decimal `json:"overdueAmount"`
}

// ObligationCounts counts obligations by derived state.
type ObligationCounts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Partial int `json:"partial"`
	Settled int `json:"settled"`
	Overdue int `json:"overdue"`
}

// ObligationSummary aggregates one kind of obligation.
type ObligationSummary struct {
	Kind       ObligationKind          `json:"kind"`
	Currencies []ObligationSummaryLine `json:"currencies"`
	Counts     ObligationCounts        `json:"counts"`
}

// ReceivablePayableSummary pairs the receivable and payable summaries.
type ReceivablePayableSummary struct {
	Receivables ObligationSummary `json:"receivables"`
	Payables    ObligationSummary `json:"payables"`
}

// PersonnelSummary reports headcount and monthly salary cost.
type PersonnelSummary struct {
	TotalCount        int                     `json:"totalCount"`
	CountsByStatus    map[PersonnelStatus]int `json:"countsByStatus"`
	MonthlySalaryCost []CurrencyAmount        `json:"monthlySalaryCost"` // base salaries of non-terminated personnel
}

// TotalBalance sums active account balances per currency.
type TotalBalance struct {
	AccountCount int              `json:"accountCount"`
	Balances     []CurrencyAmount `json:"balances"`
}

// MonthlyTrendLine is one currency's income and expense within a month.
type MonthlyTrendLine struct {
	CurrencyCode string          `json:"currencyCode"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
}

// MonthlyTrendEntry is one month of the yearly trend.
type MonthlyTrendEntry struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Currencies []MonthlyTrendLine `json:"currencies"`
}

// Dashboard bundles every report for a period.
type Dashboard struct {
	IncomeExpense IncomeExpenseSummary     `json:"incomeExpense"`
	Obligations   ReceivablePayableSummary `json:"obligations"`
	Personnel     PersonnelSummary         `json:"personnel"`
	TotalBalance  TotalBalance             `json:"totalBalance"`
	MonthlyTrend  []MonthlyTrendEntry      `json:"monthlyTrend"`
}

// SummarizeObligations aggregates obligations of the given kind as of now.
func SummarizeObligations(kind ObligationKind, obligations []Obligation, now time.Time) ObligationSummary {
	lines := map[string]*ObligationSummaryLine{}
	summary := ObligationSummary{Kind: kind}
	for _, o := range obligations {
		if o.Kind != kind {
			continue
		}
		line, ok := lines[o.CurrencyCode]
		if !ok {
			line = &ObligationSummaryLine{CurrencyCode: o.CurrencyCode}
			lines[o.CurrencyCode] = line
		}
		line.TotalAmount = line.TotalAmount.Add(o.TotalAmount)
		line.PaidAmount = line.PaidAmount.Add(o.PaidAmount)
		summary.Counts.Total++
		switch o.Status {
		case ObligationStatusPending:
			summary.Counts.Pending++
		case ObligationStatusPartial:
			summary.Counts.Partial++
		default:
			summary.Counts.Settled++
		}
		if !o.IsSettled() {
			line.OutstandingAmount = line.OutstandingAmount.Add(o.Outstanding())
		}
		if o.IsOverdue(now) {
			summary.Counts.Overdue++
			line.OverdueAmount = line.OverdueAmount.Add(o.Outstanding())
		}
	}
	summary.Currencies = make([]ObligationSummaryLine, 0, len(lines))
	for _, l := range lines {
		summary.Currencies = append(summary.Currencies, *l)
	}
	sort.Slice(summary.Currencies, func(i, j int) bool {
		return summary.Currencies[i].CurrencyCode < summary.Currencies[j].CurrencyCode
	})
	return summary
}

// SortCurrencyAmounts turns a currency map into a slice ordered by code.
func SortCurrencyAmounts(m map[string]decimal.Decimal) []CurrencyAmount {
	out := make([]CurrencyAmount, 0, len(m))
	for code, amt := range m {
		out = append(out, CurrencyAmount{CurrencyCode: code, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out
}
