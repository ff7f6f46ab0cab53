package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newAccount(id, currency string, extra ...string) domain.Account {
	mode := domain.CurrencyModeSingle
	if len(extra) > 0 {
		mode = domain.CurrencyModeMulti
	}
	supported := domain.NormalizeSupportedCurrencies(mode, currency, extra)
	return domain.Account{
		AccountID:           id,
		Name:                "Account " + id,
		AccountType:         domain.AccountTypeBank,
		CurrencyMode:        mode,
		CurrencyCode:        currency,
		SupportedCurrencies: supported,
		Balances:            domain.ZeroBalances(supported),
		IsActive:            true,
		AuditFields:         domain.NewAuditFields("tester", testNow),
	}
}

func TestStore_WithinTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := NewRepositoryProvider(store)
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, newAccount("a", "TRY")))

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repos.AccountRepo.ApplyBalanceDeltas(ctx, []domain.BalanceDelta{
			{AccountID: "a", CurrencyCode: "TRY", Amount: decimal.NewFromInt(100)},
		}, "tester", testNow))
		require.NoError(t, repos.AccountRepo.SaveAccount(ctx, newAccount("b", "USD")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	acc, err := repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, acc.Balances["TRY"].IsZero())
	_, err = repos.AccountRepo.FindAccountByID(ctx, "b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_NestedUnitsJoin(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := NewRepositoryProvider(store)

	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		return store.WithinTransaction(ctx, func(ctx context.Context) error {
			return repos.AccountRepo.SaveAccount(ctx, newAccount("a", "TRY"))
		})
	})
	require.NoError(t, err)
	_, err = repos.AccountRepo.FindAccountByID(ctx, "a")
	assert.NoError(t, err)
}

func TestAccountRepository_ApplyBalanceDeltasAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, newAccount("a", "TRY")))
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, newAccount("b", "USD")))

	err := repos.AccountRepo.ApplyBalanceDeltas(ctx, []domain.BalanceDelta{
		{AccountID: "a", CurrencyCode: "TRY", Amount: decimal.NewFromInt(-50)},
		{AccountID: "b", CurrencyCode: "EUR", Amount: decimal.NewFromInt(50)},
	}, "tester", testNow)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedCurrency)

	a, err := repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, a.Balances["TRY"].IsZero())

	err = repos.AccountRepo.ApplyBalanceDeltas(ctx, []domain.BalanceDelta{
		{AccountID: "missing", CurrencyCode: "TRY", Amount: decimal.NewFromInt(1)},
	}, "tester", testNow)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountRepository_UpdateKeepsBalancesAndChecksVersion(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, newAccount("a", "TRY", "USD")))
	require.NoError(t, repos.AccountRepo.ApplyBalanceDeltas(ctx, []domain.BalanceDelta{
		{AccountID: "a", CurrencyCode: "USD", Amount: decimal.NewFromInt(25)},
	}, "tester", testNow))

	acc, err := repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	acc.Name = "Renamed"
	acc.SupportedCurrencies = []string{"EUR", "TRY", "USD"}
	require.NoError(t, repos.AccountRepo.UpdateAccount(ctx, *acc))

	got, err := repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, int64(2), got.Version)
	assert.True(t, got.Balances["USD"].Equal(decimal.NewFromInt(25)))
	assert.True(t, got.Balances["EUR"].IsZero())

	// acc still carries version 1
	err = repos.AccountRepo.UpdateAccount(ctx, *acc)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
}

func TestAccountRepository_UpdateKeepsCurrencyThatGainedBalance(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, newAccount("a", "TRY", "USD")))

	// snapshot taken while USD is still empty
	snapshot, err := repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	require.True(t, snapshot.Balances["USD"].IsZero())

	require.NoError(t, repos.AccountRepo.ApplyBalanceDeltas(ctx, []domain.BalanceDelta{
		{AccountID: "a", CurrencyCode: "USD", Amount: decimal.NewFromInt(100)},
	}, "tester", testNow))

	snapshot.SupportedCurrencies = []string{"TRY"}
	snapshot.Balances = domain.ZeroBalances(snapshot.SupportedCurrencies)
	err = repos.AccountRepo.UpdateAccount(ctx, *snapshot)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	got, err := repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"TRY", "USD"}, got.SupportedCurrencies)
	assert.True(t, got.Balances["USD"].Equal(decimal.NewFromInt(100)))

	// once the balance is back to zero the drop goes through
	require.NoError(t, repos.AccountRepo.ApplyBalanceDeltas(ctx, []domain.BalanceDelta{
		{AccountID: "a", CurrencyCode: "USD", Amount: decimal.NewFromInt(-100)},
	}, "tester", testNow))
	require.NoError(t, repos.AccountRepo.UpdateAccount(ctx, *snapshot))
	got, err = repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"TRY"}, got.SupportedCurrencies)
	assert.NotContains(t, got.Balances, "USD")
}

func TestAccountRepository_SingleActiveDefault(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	first := newAccount("a", "TRY")
	first.IsDefault = true
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, first))

	second := newAccount("b", "TRY")
	second.IsDefault = true
	err := repos.AccountRepo.SaveAccount(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrDefaultAccountExists)
	assert.NotErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	require.NoError(t, repos.AccountRepo.ClearDefaultAccount(ctx, "TRY", "b", "tester", testNow))
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, second))
}

func TestTransactionRepository_ListPaginates(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	for i := 0; i < 5; i++ {
		num, err := repos.TransactionRepo.NextTransactionNumber(ctx, 2024)
		require.NoError(t, err)
		txn := domain.Transaction{
			TransactionID:     num,
			TransactionNumber: num,
			Type:              domain.TransactionTypeIncome,
			Status:            domain.TransactionStatusCompleted,
			TransactionDate:   testNow.AddDate(0, 0, i),
			Details:           domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(10), CurrencyCode: "TRY"},
			AuditFields:       domain.NewAuditFields("tester", testNow),
		}
		require.NoError(t, repos.TransactionRepo.SaveTransaction(ctx, txn))
	}

	first, token, err := repos.TransactionRepo.ListTransactions(ctx, domain.TransactionFilter{}, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, token)
	assert.Equal(t, "TRX-2024-000005", first[0].TransactionNumber)

	second, token, err := repos.TransactionRepo.ListTransactions(ctx, domain.TransactionFilter{}, 2, token)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "TRX-2024-000003", second[0].TransactionNumber)

	last, token, err := repos.TransactionRepo.ListTransactions(ctx, domain.TransactionFilter{}, 2, token)
	require.NoError(t, err)
	assert.Len(t, last, 1)
	assert.Nil(t, token)

	bad := "not-a-token"
	_, _, err = repos.TransactionRepo.ListTransactions(ctx, domain.TransactionFilter{}, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTransactionRepository_UpdateKeepsLegsAndChecksVersion(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	txn := domain.Transaction{
		TransactionID:     "t1",
		TransactionNumber: "TRX-2024-000001",
		Type:              domain.TransactionTypeIncome,
		Status:            domain.TransactionStatusCompleted,
		TransactionDate:   testNow,
		Details:           domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(10), CurrencyCode: "TRY"},
		AuditFields:       domain.NewAuditFields("tester", testNow),
	}
	require.NoError(t, repos.TransactionRepo.SaveTransaction(ctx, txn))

	edit := txn
	edit.Notes = "edited"
	edit.Details = domain.IncomeDetails{AccountID: "b", Amount: decimal.NewFromInt(99), CurrencyCode: "USD"}
	require.NoError(t, repos.TransactionRepo.UpdateTransaction(ctx, edit))

	got, err := repos.TransactionRepo.FindTransactionByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Notes)
	assert.Equal(t, txn.Details, got.Details)
	assert.Equal(t, txn.Version+1, got.Version)

	// edit still carries the original version
	err = repos.TransactionRepo.UpdateTransaction(ctx, edit)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	missing := txn
	missing.TransactionID = "t2"
	assert.ErrorIs(t, repos.TransactionRepo.UpdateTransaction(ctx, missing), apperrors.ErrNotFound)
}

func TestTransactionRepository_DetachObligation(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	txn := domain.Transaction{
		TransactionID:     "t1",
		TransactionNumber: "TRX-2024-000001",
		Type:              domain.TransactionTypeIncome,
		Status:            domain.TransactionStatusCompleted,
		TransactionDate:   testNow,
		Details:           domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(10), CurrencyCode: "TRY", ReceivableID: "r1"},
		AuditFields:       domain.NewAuditFields("tester", testNow),
	}
	require.NoError(t, repos.TransactionRepo.SaveTransaction(ctx, txn))

	n, err := repos.TransactionRepo.DetachObligation(ctx, "r1", "tester", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repos.TransactionRepo.FindTransactionByID(ctx, "t1")
	require.NoError(t, err)
	_, linked := got.LinkedObligation()
	assert.False(t, linked)
}

func TestSalaryRepository_UniquePeriod(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	s := domain.Salary{SalaryID: "s1", PersonnelID: "p1", Month: 3, Year: 2024, CurrencyCode: "TRY"}
	require.NoError(t, repos.SalaryRepo.SaveSalary(ctx, s))

	s.SalaryID = "s2"
	assert.ErrorIs(t, repos.SalaryRepo.SaveSalary(ctx, s), apperrors.ErrDuplicate)

	s.Month = 4
	assert.NoError(t, repos.SalaryRepo.SaveSalary(ctx, s))
}

func TestReportingRepository_SumsCompletedIncomeAndExpense(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	save := func(id string, typ domain.TransactionType, status domain.TransactionStatus, date time.Time, details domain.TransactionDetails) {
		require.NoError(t, repos.TransactionRepo.SaveTransaction(ctx, domain.Transaction{
			TransactionID: id, TransactionNumber: id, Type: typ, Status: status, TransactionDate: date, Details: details,
		}))
	}
	save("1", domain.TransactionTypeIncome, domain.TransactionStatusCompleted, testNow,
		domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(100), CurrencyCode: "TRY"})
	save("2", domain.TransactionTypeIncome, domain.TransactionStatusPending, testNow,
		domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(999), CurrencyCode: "TRY"})
	save("3", domain.TransactionTypeExpense, domain.TransactionStatusCompleted, testNow.AddDate(0, 1, 0),
		domain.ExpenseDetails{AccountID: "a", Amount: decimal.NewFromInt(40), CurrencyCode: "USD"})

	rows, err := repos.ReportingRepo.SumTransactionsByMonth(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Month)
	assert.True(t, rows[0].Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 4, rows[1].Month)
	assert.Equal(t, "USD", rows[1].CurrencyCode)

	rows, err = repos.ReportingRepo.SumTransactions(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
