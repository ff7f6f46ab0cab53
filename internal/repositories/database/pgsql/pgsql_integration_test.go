//go:build integration

package pgsql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/core/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/platform/database"
	"github.com/SscSPs/mfg_ledger/internal/repositories/database/pgsql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const actor = "user-1"

// newTestRepos starts a disposable Postgres, applies the migrations and
// returns repositories bound to it.
func newTestRepos(t *testing.T) (portsrepo.RepositoryProvider, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	applied, err := database.RunMigrations(dsn)
	require.NoError(t, err)
	require.True(t, applied)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pgsql.NewRepositoryProvider(pool), pool
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newAccount(t *testing.T, svc *portssvc.ServiceContainer, name string, mode domain.CurrencyMode, primary string, supported ...string) *domain.Account {
	t.Helper()
	acc, err := svc.Account.CreateAccount(context.Background(), dto.CreateAccountRequest{
		Name: name, AccountType: domain.AccountTypeBank, CurrencyMode: mode, CurrencyCode: primary, SupportedCurrencies: supported,
	}, actor)
	require.NoError(t, err)
	return acc
}

func requireBalance(t *testing.T, svc *portssvc.ServiceContainer, accountID, currency, want string) {
	t.Helper()
	acc, err := svc.Account.GetAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	got, ok := acc.BalanceOf(currency)
	require.True(t, ok)
	assert.True(t, got.Equal(dec(want)), "balance of %s in %s: want %s, got %s", accountID, currency, want, got)
}

func TestLedgerOnPostgres(t *testing.T) {
	repos, _ := newTestRepos(t)
	svc := services.NewServiceContainer(nil, repos, nil)
	ctx := context.Background()

	try := newAccount(t, svc, "Main TRY", domain.CurrencyModeSingle, "TRY")
	fx := newAccount(t, svc, "FX", domain.CurrencyModeMulti, "TRY", "USD")
	assert.Equal(t, []string{"TRY", "USD"}, fx.SupportedCurrencies)

	first, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeIncome, AccountID: try.AccountID, Amount: dec("1000"),
	}, actor)
	require.NoError(t, err)
	assert.Regexp(t, `^TRX-\d{4}-000001$`, first.TransactionNumber)
	requireBalance(t, svc, try.AccountID, "TRY", "1000")

	rate := dec("32")
	exchange, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeExchange, FromAccountID: fx.AccountID, FromAmount: dec("100"),
		FromCurrencyCode: "USD", ToCurrencyCode: "TRY", ExchangeRate: &rate,
	}, actor)
	require.NoError(t, err)
	requireBalance(t, svc, fx.AccountID, "USD", "-100")
	requireBalance(t, svc, fx.AccountID, "TRY", "3200")

	stored, err := svc.Transaction.GetTransactionByID(ctx, exchange.TransactionID)
	require.NoError(t, err)
	assert.IsType(t, domain.ExchangeDetails{}, stored.Details)

	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, exchange.TransactionID, actor))
	requireBalance(t, svc, fx.AccountID, "USD", "0")
	requireBalance(t, svc, fx.AccountID, "TRY", "0")

	// referenced accounts cannot be deleted
	err = svc.Account.DeleteAccount(ctx, try.AccountID, actor)
	assert.ErrorIs(t, err, apperrors.ErrAccountInUse)

	_, err = svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeIncome, AccountID: try.AccountID, Amount: dec("5"), CurrencyCode: "EUR",
	}, actor)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedCurrency)
	requireBalance(t, svc, try.AccountID, "TRY", "1000")
}

func TestObligationSettlementOnPostgres(t *testing.T) {
	repos, _ := newTestRepos(t)
	svc := services.NewServiceContainer(nil, repos, nil)
	ctx := context.Background()

	acc := newAccount(t, svc, "USD", domain.CurrencyModeSingle, "USD")
	rec, err := svc.Obligation.CreateObligation(ctx, domain.ObligationKindReceivable, dto.CreateObligationRequest{
		CounterpartyName: "Acme Textiles", CurrencyCode: "USD", TotalAmount: dec("1000"),
	}, actor)
	require.NoError(t, err)

	for _, amount := range []string{"400", "600"} {
		_, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
			Type: domain.TransactionTypeIncome, AccountID: acc.AccountID, Amount: dec(amount), ReceivableID: rec.ObligationID,
		}, actor)
		require.NoError(t, err)
	}
	got, err := svc.Obligation.GetObligation(ctx, domain.ObligationKindReceivable, rec.ObligationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationStatusCollected, got.Status)

	_, err = svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeIncome, AccountID: acc.AccountID, Amount: dec("0.01"), ReceivableID: rec.ObligationID,
	}, actor)
	assert.ErrorIs(t, err, apperrors.ErrOverpayment)
	requireBalance(t, svc, acc.AccountID, "USD", "1000")
}

func TestConcurrentWritersOnPostgres(t *testing.T) {
	repos, _ := newTestRepos(t)
	svc := services.NewServiceContainer(nil, repos, nil)
	a := newAccount(t, svc, "A", domain.CurrencyModeSingle, "TRY")
	b := newAccount(t, svc, "B", domain.CurrencyModeSingle, "TRY")

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Transaction.CreateTransaction(context.Background(), dto.CreateTransactionRequest{
				Type: domain.TransactionTypeTransfer, FromAccountID: a.AccountID, ToAccountID: b.AccountID, FromAmount: dec("3"),
			}, actor)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Transaction.CreateTransaction(context.Background(), dto.CreateTransactionRequest{
				Type: domain.TransactionTypeTransfer, FromAccountID: b.AccountID, ToAccountID: a.AccountID, FromAmount: dec("1"),
			}, actor)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	requireBalance(t, svc, a.AccountID, "TRY", "-40")
	requireBalance(t, svc, b.AccountID, "TRY", "40")
}

func TestTransactionPaginationOnPostgres(t *testing.T) {
	repos, _ := newTestRepos(t)
	svc := services.NewServiceContainer(nil, repos, nil)
	ctx := context.Background()
	acc := newAccount(t, svc, "Paged", domain.CurrencyModeSingle, "TRY")

	for i := 0; i < 5; i++ {
		_, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
			Type: domain.TransactionTypeIncome, AccountID: acc.AccountID, Amount: dec("1"),
		}, actor)
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	var token *string
	for pages := 0; pages < 3; pages++ {
		page, err := svc.Transaction.ListTransactions(ctx, dto.ListTransactionsParams{Limit: 2, NextToken: token})
		require.NoError(t, err)
		for _, txn := range page.Transactions {
			assert.False(t, seen[txn.TransactionID], "transaction %s returned twice", txn.TransactionID)
			seen[txn.TransactionID] = true
		}
		token = page.NextToken
		if token == nil {
			break
		}
	}
	assert.Len(t, seen, 5)
	assert.Nil(t, token)
}

func TestSalaryPeriodIsUniqueOnPostgres(t *testing.T) {
	repos, _ := newTestRepos(t)
	svc := services.NewServiceContainer(nil, repos, nil)
	ctx := context.Background()

	p, err := svc.Payroll.CreatePersonnel(ctx, dto.CreatePersonnelRequest{
		Name: "Ayse", BaseSalary: dec("10000"), SalaryCurrency: "TRY",
	}, actor)
	require.NoError(t, err)

	req := dto.CreateSalaryRequest{PersonnelID: p.PersonnelID, Month: 3, Year: 2024, GrossSalary: dec("10000")}
	s, err := svc.Payroll.CreateSalary(ctx, req, actor)
	require.NoError(t, err)
	assert.True(t, s.NetSalary.Equal(dec("10000")))

	_, err = svc.Payroll.CreateSalary(ctx, req, actor)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestDroppingFundedCurrencyOnPostgres(t *testing.T) {
	repos, _ := newTestRepos(t)
	svc := services.NewServiceContainer(nil, repos, nil)
	ctx := context.Background()

	fx := newAccount(t, svc, "FX", domain.CurrencyModeMulti, "TRY", "USD")
	snapshot, err := repos.AccountRepo.FindAccountByID(ctx, fx.AccountID)
	require.NoError(t, err)

	// a posting lands after the snapshot saw an empty USD balance
	require.NoError(t, repos.AccountRepo.ApplyBalanceDeltas(ctx, []domain.BalanceDelta{
		{AccountID: fx.AccountID, CurrencyCode: "USD", Amount: dec("100")},
	}, actor, time.Now()))

	snapshot.SupportedCurrencies = []string{"TRY"}
	snapshot.Balances = domain.ZeroBalances(snapshot.SupportedCurrencies)
	err = repos.AccountRepo.UpdateAccount(ctx, *snapshot)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
	requireBalance(t, svc, fx.AccountID, "USD", "100")

	// through the service the retried update sees the balance and refuses
	_, err = svc.Account.UpdateAccount(ctx, fx.AccountID, dto.UpdateAccountRequest{
		SupportedCurrencies: &[]string{"TRY"},
	}, actor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	requireBalance(t, svc, fx.AccountID, "USD", "100")
}

func TestSecondDefaultOnPostgres(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	first := domain.Account{
		AccountID: "00000000-0000-0000-0000-000000000001", Name: "Main", AccountType: domain.AccountTypeBank,
		CurrencyMode: domain.CurrencyModeSingle, CurrencyCode: "TRY", SupportedCurrencies: []string{"TRY"},
		Balances: domain.ZeroBalances([]string{"TRY"}), IsDefault: true, IsActive: true,
		AuditFields: domain.NewAuditFields(actor, time.Now()),
	}
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, first))

	second := first.Clone()
	second.AccountID = "00000000-0000-0000-0000-000000000002"
	err := repos.AccountRepo.SaveAccount(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrDefaultAccountExists)
	assert.NotErrorIs(t, err, apperrors.ErrConcurrencyConflict)
}
