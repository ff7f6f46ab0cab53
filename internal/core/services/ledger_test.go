package services_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/core/services"
	"github.com/SscSPs/mfg_ledger/internal/dto"
	"github.com/SscSPs/mfg_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const actor = "user-1"

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, opts ...services.ServiceOption) *portssvc.ServiceContainer {
	t.Helper()
	repos := memory.NewRepositoryProvider(memory.NewStore())
	opts = append([]services.ServiceOption{services.WithClock(func() time.Time { return fixedNow })}, opts...)
	return services.NewServiceContainer(nil, repos, nil, opts...)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func createAccount(t *testing.T, svc *portssvc.ServiceContainer, name string, mode domain.CurrencyMode, primary string, supported ...string) *domain.Account {
	t.Helper()
	acc, err := svc.Account.CreateAccount(context.Background(), dto.CreateAccountRequest{
		Name:                name,
		AccountType:         domain.AccountTypeBank,
		CurrencyMode:        mode,
		CurrencyCode:        primary,
		SupportedCurrencies: supported,
	}, actor)
	require.NoError(t, err)
	return acc
}

func balance(t *testing.T, svc *portssvc.ServiceContainer, accountID, currency string) decimal.Decimal {
	t.Helper()
	acc, err := svc.Account.GetAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	b, ok := acc.BalanceOf(currency)
	require.True(t, ok, "account %s does not hold %s", accountID, currency)
	return b
}

func assertBalance(t *testing.T, svc *portssvc.ServiceContainer, accountID, currency, want string) {
	t.Helper()
	got := balance(t, svc, accountID, currency)
	assert.True(t, got.Equal(dec(want)), "balance of %s in %s: want %s, got %s", accountID, currency, want, got)
}

func income(t *testing.T, svc *portssvc.ServiceContainer, accountID, amount, currency string) *domain.Transaction {
	t.Helper()
	txn, err := svc.Transaction.CreateTransaction(context.Background(), dto.CreateTransactionRequest{
		Type: domain.TransactionTypeIncome, AccountID: accountID, Amount: dec(amount), CurrencyCode: currency,
	}, actor)
	require.NoError(t, err)
	return txn
}

func TestIncomeAndDelete(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "Main TRY", domain.CurrencyModeSingle, "TRY")
	assertBalance(t, svc, acc.AccountID, "TRY", "0")

	txn := income(t, svc, acc.AccountID, "1000", "TRY")
	assert.Equal(t, "TRX-2024-000001", txn.TransactionNumber)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	assertBalance(t, svc, acc.AccountID, "TRY", "1000")

	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, txn.TransactionID, actor))
	assertBalance(t, svc, acc.AccountID, "TRY", "0")

	_, err := svc.Transaction.GetTransactionByID(ctx, txn.TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTransferAndDelete(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	a := createAccount(t, svc, "A", domain.CurrencyModeSingle, "TRY")
	b := createAccount(t, svc, "B", domain.CurrencyModeSingle, "TRY")
	income(t, svc, a.AccountID, "500", "TRY")

	txn, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeTransfer, FromAccountID: a.AccountID, ToAccountID: b.AccountID, FromAmount: dec("200"),
	}, actor)
	require.NoError(t, err)
	details := txn.Details.(domain.TransferDetails)
	assert.Equal(t, "TRY", details.ToCurrencyCode)
	assert.True(t, details.ToAmount.Equal(dec("200")))
	assertBalance(t, svc, a.AccountID, "TRY", "300")
	assertBalance(t, svc, b.AccountID, "TRY", "200")

	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, txn.TransactionID, actor))
	assertBalance(t, svc, a.AccountID, "TRY", "500")
	assertBalance(t, svc, b.AccountID, "TRY", "0")
}

func TestExchangeAndDelete(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "FX", domain.CurrencyModeMulti, "TRY", "USD")
	assert.Equal(t, []string{"TRY", "USD"}, acc.SupportedCurrencies)

	txn, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type:             domain.TransactionTypeExchange,
		FromAccountID:    acc.AccountID,
		FromAmount:       dec("100"),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "TRY",
		ExchangeRate:     decPtr("32"),
	}, actor)
	require.NoError(t, err)
	details := txn.Details.(domain.ExchangeDetails)
	assert.Equal(t, acc.AccountID, details.ToAccountID)
	assert.True(t, details.ToAmount.Equal(dec("3200")))
	assertBalance(t, svc, acc.AccountID, "USD", "-100")
	assertBalance(t, svc, acc.AccountID, "TRY", "3200")

	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, txn.TransactionID, actor))
	assertBalance(t, svc, acc.AccountID, "USD", "0")
	assertBalance(t, svc, acc.AccountID, "TRY", "0")
}

func TestReceivableSettlement(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "USD", domain.CurrencyModeSingle, "USD")
	rec, err := svc.Obligation.CreateObligation(ctx, domain.ObligationKindReceivable, dto.CreateObligationRequest{
		CounterpartyName: "Acme Textiles", CurrencyCode: "USD", TotalAmount: dec("1000"),
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationStatusPending, rec.Status)

	pay := func(amount string) error {
		_, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
			Type: domain.TransactionTypeIncome, AccountID: acc.AccountID, Amount: dec(amount), ReceivableID: rec.ObligationID,
		}, actor)
		return err
	}

	require.NoError(t, pay("400"))
	got, err := svc.Obligation.GetObligation(ctx, domain.ObligationKindReceivable, rec.ObligationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationStatusPartial, got.Status)
	assert.True(t, got.PaidAmount.Equal(dec("400")))

	require.NoError(t, pay("600"))
	got, err = svc.Obligation.GetObligation(ctx, domain.ObligationKindReceivable, rec.ObligationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationStatusCollected, got.Status)
	assert.True(t, got.PaidAmount.Equal(dec("1000")))

	err = pay("0.01")
	assert.ErrorIs(t, err, apperrors.ErrOverpayment)
	got, err = svc.Obligation.GetObligation(ctx, domain.ObligationKindReceivable, rec.ObligationID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.Equal(dec("1000")))
	assertBalance(t, svc, acc.AccountID, "USD", "1000")
}

func TestSalaryNetCalculation(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	person, err := svc.Payroll.CreatePersonnel(ctx, dto.CreatePersonnelRequest{
		Name: "Ayse Yilmaz", BaseSalary: dec("10000"), SalaryCurrency: "TRY",
	}, actor)
	require.NoError(t, err)

	salary, err := svc.Payroll.CreateSalary(ctx, dto.CreateSalaryRequest{
		PersonnelID: person.PersonnelID,
		Month:       3,
		Year:        2024,
		GrossSalary: dec("10000"),
		Deductions:  domain.Deductions{Tax: dec("1500"), SocialSecurity: dec("500")},
		Bonuses:     domain.Bonuses{Performance: dec("300")},
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "TRY", salary.CurrencyCode)
	assert.True(t, salary.TotalDeductions.Equal(dec("2000")))
	assert.True(t, salary.NetSalary.Equal(dec("8300")), "net salary %s", salary.NetSalary)

	_, err = svc.Payroll.CreateSalary(ctx, dto.CreateSalaryRequest{
		PersonnelID: person.PersonnelID, Month: 3, Year: 2024, GrossSalary: dec("1"),
	}, actor)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	bonus := domain.Bonuses{Performance: dec("300"), Overtime: dec("200")}
	updated, err := svc.Payroll.UpdateSalary(ctx, salary.SalaryID, dto.UpdateSalaryRequest{Bonuses: &bonus}, actor)
	require.NoError(t, err)
	assert.True(t, updated.NetSalary.Equal(dec("8500")))
}

func TestReversalRestoresBalancesForEveryType(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	a := createAccount(t, svc, "A", domain.CurrencyModeMulti, "TRY", "USD")
	b := createAccount(t, svc, "B", domain.CurrencyModeMulti, "USD", "TRY")
	income(t, svc, a.AccountID, "1234.56", "TRY")
	income(t, svc, b.AccountID, "77.7", "USD")

	requests := []dto.CreateTransactionRequest{
		{Type: domain.TransactionTypeIncome, AccountID: a.AccountID, Amount: dec("10.005")},
		{Type: domain.TransactionTypeExpense, AccountID: b.AccountID, Amount: dec("99.99"), CurrencyCode: "USD"},
		{Type: domain.TransactionTypeTransfer, FromAccountID: a.AccountID, ToAccountID: b.AccountID, FromAmount: dec("100"),
			FromCurrencyCode: "TRY", ToCurrencyCode: "USD", ExchangeRate: decPtr("0.031")},
		{Type: domain.TransactionTypeExchange, FromAccountID: b.AccountID, FromAmount: dec("3.33"),
			FromCurrencyCode: "USD", ToCurrencyCode: "TRY", ExchangeRate: decPtr("32.5")},
	}
	for _, req := range requests {
		t.Run(string(req.Type), func(t *testing.T) {
			before := map[string]decimal.Decimal{
				"a/TRY": balance(t, svc, a.AccountID, "TRY"), "a/USD": balance(t, svc, a.AccountID, "USD"),
				"b/TRY": balance(t, svc, b.AccountID, "TRY"), "b/USD": balance(t, svc, b.AccountID, "USD"),
			}
			txn, err := svc.Transaction.CreateTransaction(ctx, req, actor)
			require.NoError(t, err)
			require.NoError(t, svc.Transaction.DeleteTransaction(ctx, txn.TransactionID, actor))
			after := map[string]decimal.Decimal{
				"a/TRY": balance(t, svc, a.AccountID, "TRY"), "a/USD": balance(t, svc, a.AccountID, "USD"),
				"b/TRY": balance(t, svc, b.AccountID, "TRY"), "b/USD": balance(t, svc, b.AccountID, "USD"),
			}
			for k := range before {
				assert.True(t, before[k].Equal(after[k]), "%s: before %s, after %s", k, before[k], after[k])
			}
		})
	}
}

func TestBalanceConservation(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	accounts := []*domain.Account{
		createAccount(t, svc, "A", domain.CurrencyModeMulti, "TRY", "USD", "EUR"),
		createAccount(t, svc, "B", domain.CurrencyModeMulti, "USD", "TRY", "EUR"),
		createAccount(t, svc, "C", domain.CurrencyModeMulti, "EUR", "TRY", "USD"),
	}
	currencies := []string{"EUR", "TRY", "USD"}
	expected := map[string]decimal.Decimal{}

	rng := rand.New(rand.NewSource(42))
	amount := func() decimal.Decimal { return decimal.New(int64(rng.Intn(100000)+1), -2) }

	for i := 0; i < 200; i++ {
		from := accounts[rng.Intn(len(accounts))]
		to := accounts[rng.Intn(len(accounts))]
		cur := currencies[rng.Intn(len(currencies))]
		other := currencies[(rng.Intn(2)+1+indexOf(currencies, cur))%len(currencies)]
		amt := amount()

		var req dto.CreateTransactionRequest
		switch rng.Intn(4) {
		case 0:
			req = dto.CreateTransactionRequest{Type: domain.TransactionTypeIncome, AccountID: from.AccountID, Amount: amt, CurrencyCode: cur}
			expected[cur] = expected[cur].Add(amt)
		case 1:
			req = dto.CreateTransactionRequest{Type: domain.TransactionTypeExpense, AccountID: from.AccountID, Amount: amt, CurrencyCode: cur}
			expected[cur] = expected[cur].Sub(amt)
		case 2:
			if from.AccountID == to.AccountID {
				continue
			}
			req = dto.CreateTransactionRequest{Type: domain.TransactionTypeTransfer, FromAccountID: from.AccountID, ToAccountID: to.AccountID,
				FromAmount: amt, FromCurrencyCode: cur, ToCurrencyCode: cur}
		case 3:
			rate := decimal.New(int64(rng.Intn(5000)+1), -2)
			req = dto.CreateTransactionRequest{Type: domain.TransactionTypeExchange, FromAccountID: from.AccountID, ToAccountID: to.AccountID,
				FromAmount: amt, FromCurrencyCode: cur, ToCurrencyCode: other, ExchangeRate: &rate}
			expected[cur] = expected[cur].Sub(amt)
			expected[other] = expected[other].Add(domain.ConvertAmount(amt, rate))
		}
		_, err := svc.Transaction.CreateTransaction(ctx, req, actor)
		require.NoError(t, err, "step %d", i)
	}

	actual := map[string]decimal.Decimal{}
	for _, acc := range accounts {
		for _, c := range currencies {
			actual[c] = actual[c].Add(balance(t, svc, acc.AccountID, c))
		}
		discrepancies, err := svc.Account.ReconcileAccount(ctx, acc.AccountID)
		require.NoError(t, err)
		assert.Empty(t, discrepancies)
	}
	for _, c := range currencies {
		assert.True(t, expected[c].Equal(actual[c]), "%s: expected %s, actual %s", c, expected[c], actual[c])
	}
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return -1
}

func TestConcurrentIncomeLosesNoUpdates(t *testing.T) {
	svc := newLedger(t)
	acc := createAccount(t, svc, "Busy", domain.CurrencyModeSingle, "TRY")

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transaction.CreateTransaction(context.Background(), dto.CreateTransactionRequest{
				Type: domain.TransactionTypeIncome, AccountID: acc.AccountID, Amount: dec("10"),
			}, actor)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assertBalance(t, svc, acc.AccountID, "TRY", "500")

	page, err := svc.Transaction.ListTransactions(context.Background(), dto.ListTransactionsParams{Limit: 100})
	require.NoError(t, err)
	numbers := map[string]bool{}
	for _, txn := range page.Transactions {
		numbers[txn.TransactionNumber] = true
	}
	assert.Len(t, numbers, 50)
}

func TestOppositeTransfersDoNotDeadlock(t *testing.T) {
	svc := newLedger(t)
	a := createAccount(t, svc, "A", domain.CurrencyModeSingle, "TRY")
	b := createAccount(t, svc, "B", domain.CurrencyModeSingle, "TRY")

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 40; i++ {
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Transaction.CreateTransaction(context.Background(), dto.CreateTransactionRequest{
					Type: domain.TransactionTypeTransfer, FromAccountID: from.AccountID, ToAccountID: to.AccountID, FromAmount: dec("5"),
				}, actor)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("opposite transfers did not finish")
	}
	assertBalance(t, svc, a.AccountID, "TRY", "0")
	assertBalance(t, svc, b.AccountID, "TRY", "0")
}

func TestDefaultAccountIsUniquePerCurrency(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		acc, err := svc.Account.CreateAccount(ctx, dto.CreateAccountRequest{
			Name: fmt.Sprintf("TRY %d", i), AccountType: domain.AccountTypeCash, CurrencyCode: "TRY", IsDefault: true,
		}, actor)
		require.NoError(t, err)
		ids = append(ids, acc.AccountID)
	}
	yes := true
	_, err := svc.Account.UpdateAccount(ctx, ids[0], dto.UpdateAccountRequest{IsDefault: &yes}, actor)
	require.NoError(t, err)

	usd, err := svc.Account.CreateAccount(ctx, dto.CreateAccountRequest{
		Name: "USD", AccountType: domain.AccountTypeBank, CurrencyCode: "USD", IsDefault: true,
	}, actor)
	require.NoError(t, err)

	accounts, err := svc.Account.ListAccounts(ctx, dto.ListAccountsParams{ActiveOnly: true})
	require.NoError(t, err)
	defaults := map[string][]string{}
	for _, acc := range accounts {
		if acc.IsDefault {
			defaults[acc.CurrencyCode] = append(defaults[acc.CurrencyCode], acc.AccountID)
		}
	}
	assert.Equal(t, []string{ids[0]}, defaults["TRY"])
	assert.Equal(t, []string{usd.AccountID}, defaults["USD"])

	require.NoError(t, svc.Account.DeactivateAccount(ctx, ids[0], actor))
	acc, err := svc.Account.GetAccountByID(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, acc.IsDefault)
	assert.False(t, acc.IsActive)
}

func TestPendingTransactionLifecycle(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "Main", domain.CurrencyModeSingle, "EUR")
	pay, err := svc.Obligation.CreateObligation(ctx, domain.ObligationKindPayable, dto.CreateObligationRequest{
		CounterpartyName: "Yarn Supplier", CurrencyCode: "EUR", TotalAmount: dec("300"),
	}, actor)
	require.NoError(t, err)

	txn, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusPending,
		AccountID: acc.AccountID, Amount: dec("300"), PayableID: pay.ObligationID,
	}, actor)
	require.NoError(t, err)
	assertBalance(t, svc, acc.AccountID, "EUR", "0")

	got, err := svc.Obligation.GetObligation(ctx, domain.ObligationKindPayable, pay.ObligationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationStatusPending, got.Status)

	completed, err := svc.Transaction.ChangeTransactionStatus(ctx, txn.TransactionID, domain.TransactionStatusCompleted, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, completed.Status)
	assertBalance(t, svc, acc.AccountID, "EUR", "-300")

	got, err = svc.Obligation.GetObligation(ctx, domain.ObligationKindPayable, pay.ObligationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationStatusPaid, got.Status)

	_, err = svc.Transaction.ChangeTransactionStatus(ctx, txn.TransactionID, domain.TransactionStatusCancelled, actor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, txn.TransactionID, actor))
	assertBalance(t, svc, acc.AccountID, "EUR", "0")
	got, err = svc.Obligation.GetObligation(ctx, domain.ObligationKindPayable, pay.ObligationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ObligationStatusPending, got.Status)
	assert.True(t, got.PaidAmount.IsZero())
}

func TestRejectedTransactionsLeaveNoTrace(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	try := createAccount(t, svc, "TRY only", domain.CurrencyModeSingle, "TRY")
	usd := createAccount(t, svc, "USD only", domain.CurrencyModeSingle, "USD")

	tests := []struct {
		name string
		req  dto.CreateTransactionRequest
		err  error
	}{
		{"zero amount", dto.CreateTransactionRequest{Type: domain.TransactionTypeIncome, AccountID: try.AccountID, Amount: dec("0")}, apperrors.ErrValidation},
		{"unsupported currency", dto.CreateTransactionRequest{Type: domain.TransactionTypeIncome, AccountID: try.AccountID, Amount: dec("5"), CurrencyCode: "USD"}, apperrors.ErrUnsupportedCurrency},
		{"missing account", dto.CreateTransactionRequest{Type: domain.TransactionTypeExpense, AccountID: "nope", Amount: dec("5"), CurrencyCode: "TRY"}, apperrors.ErrNotFound},
		{"same account transfer", dto.CreateTransactionRequest{Type: domain.TransactionTypeTransfer, FromAccountID: try.AccountID, ToAccountID: try.AccountID, FromAmount: dec("5")}, apperrors.ErrValidation},
		{"cross currency transfer without rate", dto.CreateTransactionRequest{Type: domain.TransactionTypeTransfer, FromAccountID: try.AccountID, ToAccountID: usd.AccountID, FromAmount: dec("5")}, apperrors.ErrValidation},
		{"exchange rate mismatch", dto.CreateTransactionRequest{Type: domain.TransactionTypeTransfer, FromAccountID: try.AccountID, ToAccountID: usd.AccountID,
			FromAmount: dec("320"), ToAmount: decPtr("11"), ExchangeRate: decPtr("0.03125")}, apperrors.ErrValidation},
		{"missing actor", dto.CreateTransactionRequest{Type: domain.TransactionTypeIncome, AccountID: try.AccountID, Amount: dec("5")}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := actor
			if tt.name == "missing actor" {
				user = ""
			}
			_, err := svc.Transaction.CreateTransaction(ctx, tt.req, user)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assertBalance(t, svc, try.AccountID, "TRY", "0")
	assertBalance(t, svc, usd.AccountID, "USD", "0")
	page, err := svc.Transaction.ListTransactions(ctx, dto.ListTransactionsParams{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Transactions)

	// a valid cross-currency transfer goes through
	_, err = svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{Type: domain.TransactionTypeTransfer,
		FromAccountID: try.AccountID, ToAccountID: usd.AccountID, FromAmount: dec("320"), ExchangeRate: decPtr("0.03125")}, actor)
	require.NoError(t, err)
	assertBalance(t, svc, usd.AccountID, "USD", "10")
}

func TestAccountGuards(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "Guarded", domain.CurrencyModeMulti, "TRY", "USD")
	spare := createAccount(t, svc, "Spare", domain.CurrencyModeSingle, "TRY")

	eur := "EUR"
	_, err := svc.Account.UpdateAccount(ctx, spare.AccountID, dto.UpdateAccountRequest{CurrencyCode: &eur}, actor)
	require.NoError(t, err)

	income(t, svc, acc.AccountID, "10", "USD")

	_, err = svc.Account.UpdateAccount(ctx, acc.AccountID, dto.UpdateAccountRequest{CurrencyCode: &eur}, actor)
	assert.ErrorIs(t, err, apperrors.ErrImmutableField)

	single := domain.CurrencyModeSingle
	_, err = svc.Account.UpdateAccount(ctx, acc.AccountID, dto.UpdateAccountRequest{CurrencyMode: &single}, actor)
	assert.ErrorIs(t, err, apperrors.ErrImmutableField)

	added := []string{"TRY", "USD", "GBP"}
	updated, err := svc.Account.UpdateAccount(ctx, acc.AccountID, dto.UpdateAccountRequest{SupportedCurrencies: &added}, actor)
	require.NoError(t, err)
	assert.Equal(t, []string{"GBP", "TRY", "USD"}, updated.SupportedCurrencies)
	assertBalance(t, svc, acc.AccountID, "USD", "10")
	assertBalance(t, svc, acc.AccountID, "GBP", "0")

	err = svc.Account.DeleteAccount(ctx, acc.AccountID, actor)
	assert.ErrorIs(t, err, apperrors.ErrAccountInUse)

	require.NoError(t, svc.Account.DeleteAccount(ctx, spare.AccountID, actor))
	_, err = svc.Account.GetAccountByID(ctx, spare.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteObligationDetachesTransactions(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "Main", domain.CurrencyModeSingle, "TRY")
	rec, err := svc.Obligation.CreateObligation(ctx, domain.ObligationKindReceivable, dto.CreateObligationRequest{
		CounterpartyName: "Client", CurrencyCode: "TRY", TotalAmount: dec("100"),
	}, actor)
	require.NoError(t, err)
	txn, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeIncome, AccountID: acc.AccountID, Amount: dec("40"), ReceivableID: rec.ObligationID,
	}, actor)
	require.NoError(t, err)

	err = svc.Obligation.DeleteObligation(ctx, domain.ObligationKindReceivable, rec.ObligationID, false, actor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, svc.Obligation.DeleteObligation(ctx, domain.ObligationKindReceivable, rec.ObligationID, true, actor))
	got, err := svc.Transaction.GetTransactionByID(ctx, txn.TransactionID)
	require.NoError(t, err)
	_, linked := got.LinkedObligation()
	assert.False(t, linked)

	// the unlinked income can still be reversed
	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, txn.TransactionID, actor))
	assertBalance(t, svc, acc.AccountID, "TRY", "0")
}

func TestReports(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	try := createAccount(t, svc, "TRY", domain.CurrencyModeSingle, "TRY")
	usd := createAccount(t, svc, "USD", domain.CurrencyModeSingle, "USD")
	feb := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	for _, req := range []dto.CreateTransactionRequest{
		{Type: domain.TransactionTypeIncome, AccountID: try.AccountID, Amount: dec("1000"), TransactionDate: &feb},
		{Type: domain.TransactionTypeExpense, AccountID: try.AccountID, Amount: dec("250")},
		{Type: domain.TransactionTypeIncome, AccountID: usd.AccountID, Amount: dec("40")},
		{Type: domain.TransactionTypeIncome, AccountID: usd.AccountID, Amount: dec("60"), Status: domain.TransactionStatusPending},
	} {
		_, err := svc.Transaction.CreateTransaction(ctx, req, actor)
		require.NoError(t, err)
	}

	summary, err := svc.Reporting.GetIncomeExpenseSummary(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, summary.Currencies, 2)
	assert.Equal(t, "TRY", summary.Currencies[0].CurrencyCode)
	assert.True(t, summary.Currencies[0].Net.Equal(dec("750")))
	assert.Equal(t, "USD", summary.Currencies[1].CurrencyCode)
	assert.True(t, summary.Currencies[1].Income.Equal(dec("40")))

	trend, err := svc.Reporting.GetMonthlyTrend(ctx, 2024, "")
	require.NoError(t, err)
	require.Len(t, trend, 12)
	require.Len(t, trend[1].Currencies, 2)
	assert.True(t, trend[1].Currencies[0].Income.Equal(dec("1000")))
	assert.True(t, trend[2].Currencies[0].Expense.Equal(dec("250")))
	assert.True(t, trend[0].Currencies[1].Net.IsZero())

	onlyUSD, err := svc.Reporting.GetMonthlyTrend(ctx, 2024, "usd")
	require.NoError(t, err)
	for _, entry := range onlyUSD {
		require.Len(t, entry.Currencies, 1)
		assert.Equal(t, "USD", entry.Currencies[0].CurrencyCode)
	}

	dash, err := svc.Reporting.GetDashboard(ctx, nil, nil, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.TotalBalance.AccountCount)
	require.Len(t, dash.TotalBalance.Balances, 2)
	assert.True(t, dash.TotalBalance.Balances[0].Amount.Equal(dec("750")))
	assert.Len(t, dash.MonthlyTrend, 12)
}

func TestExchangeRateIsKeptAtStoredPrecision(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "FX", domain.CurrencyModeMulti, "TRY", "USD")

	txn, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type:             domain.TransactionTypeExchange,
		FromAccountID:    acc.AccountID,
		FromAmount:       dec("10000000"),
		FromCurrencyCode: "TRY",
		ToCurrencyCode:   "USD",
		ExchangeRate:     decPtr("0.0312500006"),
	}, actor)
	require.NoError(t, err)
	details := txn.Details.(domain.ExchangeDetails)
	assert.True(t, details.ExchangeRate.Equal(dec("0.03125")), "rate %s", details.ExchangeRate)
	assert.True(t, details.ToAmount.Equal(dec("312500")), "toAmount %s", details.ToAmount)
	assertBalance(t, svc, acc.AccountID, "USD", "312500")

	notes := "settled at the bank counter"
	updated, err := svc.Transaction.UpdateTransaction(ctx, txn.TransactionID, dto.UpdateTransactionRequest{Notes: &notes}, actor)
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	// an explicit toAmount computed from the unrounded rate no longer matches
	_, err = svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type:             domain.TransactionTypeExchange,
		FromAccountID:    acc.AccountID,
		FromAmount:       dec("10000000"),
		FromCurrencyCode: "TRY",
		ToCurrencyCode:   "USD",
		ToAmount:         decPtr("312500.01"),
		ExchangeRate:     decPtr("0.0312500006"),
	}, actor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateTransaction(t *testing.T) {
	notes := "paid in cash"
	category := "  rent  "
	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     dto.UpdateTransactionRequest
		missing bool
		actor   string
		wantErr error
		check   func(t *testing.T, got *domain.Transaction)
	}{
		{
			name:  "notes",
			req:   dto.UpdateTransactionRequest{Notes: &notes},
			actor: actor,
			check: func(t *testing.T, got *domain.Transaction) {
				assert.Equal(t, notes, got.Notes)
			},
		},
		{
			name:  "category and date",
			req:   dto.UpdateTransactionRequest{Category: &category, TransactionDate: &march},
			actor: actor,
			check: func(t *testing.T, got *domain.Transaction) {
				assert.Equal(t, "rent", got.Category)
				assert.True(t, got.TransactionDate.Equal(march))
			},
		},
		{
			name:    "unknown transaction",
			req:     dto.UpdateTransactionRequest{Notes: &notes},
			missing: true,
			actor:   actor,
			wantErr: apperrors.ErrNotFound,
		},
		{
			name:    "no actor",
			req:     dto.UpdateTransactionRequest{Notes: &notes},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newLedger(t)
			ctx := context.Background()
			acc := createAccount(t, svc, "Main", domain.CurrencyModeSingle, "TRY")
			txn := income(t, svc, acc.AccountID, "100", "TRY")

			id := txn.TransactionID
			if tt.missing {
				id = "00000000-0000-0000-0000-000000000000"
			}
			got, err := svc.Transaction.UpdateTransaction(ctx, id, tt.req, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				stored, err := svc.Transaction.GetTransactionByID(ctx, txn.TransactionID)
				require.NoError(t, err)
				assert.Equal(t, txn.Version, stored.Version)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, txn.Version+1, got.Version)
			assert.Equal(t, txn.Details, got.Details)
			assert.Equal(t, txn.TransactionNumber, got.TransactionNumber)
			tt.check(t, got)

			stored, err := svc.Transaction.GetTransactionByID(ctx, txn.TransactionID)
			require.NoError(t, err)
			assert.Equal(t, got.Version, stored.Version)
			tt.check(t, stored)
			assertBalance(t, svc, acc.AccountID, "TRY", "100")
		})
	}
}

func TestUpdateTransactionTwiceBumpsVersionEachTime(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "Main", domain.CurrencyModeSingle, "TRY")
	txn := income(t, svc, acc.AccountID, "100", "TRY")

	first, second := "first", "second"
	v1, err := svc.Transaction.UpdateTransaction(ctx, txn.TransactionID, dto.UpdateTransactionRequest{Notes: &first}, actor)
	require.NoError(t, err)
	v2, err := svc.Transaction.UpdateTransaction(ctx, txn.TransactionID, dto.UpdateTransactionRequest{Notes: &second}, actor)
	require.NoError(t, err)

	assert.Equal(t, txn.Version+1, v1.Version)
	assert.Equal(t, txn.Version+2, v2.Version)
	assert.Equal(t, "second", v2.Notes)
	assertBalance(t, svc, acc.AccountID, "TRY", "100")
}

func TestPersonnelSummary(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()

	for _, req := range []dto.CreatePersonnelRequest{
		{Name: "Ayse", BaseSalary: dec("30000"), SalaryCurrency: "TRY"},
		{Name: "Mehmet", BaseSalary: dec("20000.50"), SalaryCurrency: "try", Status: domain.PersonnelStatusOnLeave},
		{Name: "John", BaseSalary: dec("4000"), SalaryCurrency: "USD"},
		{Name: "Jane", BaseSalary: dec("5000"), SalaryCurrency: "USD", Status: domain.PersonnelStatusTerminated},
		{Name: "Hans", BaseSalary: dec("3500"), SalaryCurrency: "EUR", Status: domain.PersonnelStatusTerminated},
	} {
		_, err := svc.Payroll.CreatePersonnel(ctx, req, actor)
		require.NoError(t, err)
	}

	summary, err := svc.Reporting.GetPersonnelSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalCount)
	assert.Equal(t, map[domain.PersonnelStatus]int{
		domain.PersonnelStatusActive:     2,
		domain.PersonnelStatusOnLeave:    1,
		domain.PersonnelStatusTerminated: 2,
	}, summary.CountsByStatus)

	// terminated personnel cost nothing, so EUR does not appear
	require.Len(t, summary.MonthlySalaryCost, 2)
	assert.Equal(t, "TRY", summary.MonthlySalaryCost[0].CurrencyCode)
	assert.True(t, summary.MonthlySalaryCost[0].Amount.Equal(dec("50000.50")))
	assert.Equal(t, "USD", summary.MonthlySalaryCost[1].CurrencyCode)
	assert.True(t, summary.MonthlySalaryCost[1].Amount.Equal(dec("4000")))

	empty, err := newLedger(t).Reporting.GetPersonnelSummary(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalCount)
	assert.Empty(t, empty.MonthlySalaryCost)
}

func TestTransactionNumbersFollowTransactionDateYear(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()
	acc := createAccount(t, svc, "Main", domain.CurrencyModeSingle, "TRY")
	lastYear := time.Date(2023, time.December, 28, 0, 0, 0, 0, time.UTC)

	current := income(t, svc, acc.AccountID, "10", "TRY")
	backdated, err := svc.Transaction.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Type: domain.TransactionTypeIncome, AccountID: acc.AccountID, Amount: dec("20"), TransactionDate: &lastYear,
	}, actor)
	require.NoError(t, err)
	next := income(t, svc, acc.AccountID, "30", "TRY")

	assert.Equal(t, "TRX-2024-000001", current.TransactionNumber)
	assert.Equal(t, "TRX-2023-000001", backdated.TransactionNumber)
	assert.Equal(t, "TRX-2024-000002", next.TransactionNumber)
}
