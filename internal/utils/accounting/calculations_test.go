package accounting_test

import (
	"testing"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	txns := []domain.Transaction{
		{
			Type: domain.TransactionTypeIncome, Status: domain.TransactionStatusCompleted,
			Details: domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(500), CurrencyCode: "TRY"},
		},
		{
			Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusPending,
			Details: domain.ExpenseDetails{AccountID: "a", Amount: decimal.NewFromInt(900), CurrencyCode: "TRY"},
		},
		{
			Type: domain.TransactionTypeTransfer, Status: domain.TransactionStatusCompleted,
			Details: domain.TransferDetails{
				FromAccountID: "a", ToAccountID: "b",
				FromAmount: decimal.NewFromInt(200), FromCurrencyCode: "TRY",
				ToAmount: decimal.NewFromInt(200), ToCurrencyCode: "TRY",
			},
		},
	}

	consistent := domain.Account{AccountID: "a", Balances: map[string]decimal.Decimal{"TRY": decimal.NewFromInt(300)}}
	assert.Empty(t, accounting.Reconcile(consistent, txns))

	drifted := domain.Account{AccountID: "a", Balances: map[string]decimal.Decimal{"TRY": decimal.NewFromInt(310)}}
	got := accounting.Reconcile(drifted, txns)
	require.Len(t, got, 1)
	assert.Equal(t, "TRY", got[0].CurrencyCode)
	assert.True(t, got[0].Difference.Equal(decimal.NewFromInt(10)))

	effects := accounting.NetEffects(txns)
	assert.True(t, effects["b"]["TRY"].Equal(decimal.NewFromInt(200)))
}
