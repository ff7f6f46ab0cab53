package mapping_test

import (
	"testing"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/SscSPs/mfg_ledger/internal/models"
	"github.com/SscSPs/mfg_ledger/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRowKeepsDetailsVariant(t *testing.T) {
	rate := decimal.RequireFromString("32.5")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []domain.Transaction{
		{
			TransactionID: "t1", Type: domain.TransactionTypeIncome, Status: domain.TransactionStatusCompleted, TransactionDate: date,
			Details: domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(10), CurrencyCode: "TRY", ReceivableID: "r1"},
		},
		{
			TransactionID: "t2", Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusPending, TransactionDate: date,
			Details: domain.ExpenseDetails{AccountID: "a", Amount: decimal.NewFromInt(10), CurrencyCode: "TRY"},
		},
		{
			TransactionID: "t3", Type: domain.TransactionTypeTransfer, Status: domain.TransactionStatusCompleted, TransactionDate: date,
			Details: domain.TransferDetails{
				FromAccountID: "a", ToAccountID: "b",
				FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "USD",
				ToAmount: decimal.NewFromInt(3250), ToCurrencyCode: "TRY", ExchangeRate: &rate,
			},
		},
		{
			TransactionID: "t4", Type: domain.TransactionTypeExchange, Status: domain.TransactionStatusCompleted, TransactionDate: date,
			Details: domain.ExchangeDetails{
				FromAccountID: "a", ToAccountID: "a",
				FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "USD",
				ToAmount: decimal.NewFromInt(3250), ToCurrencyCode: "TRY", ExchangeRate: rate,
			},
		},
	}

	for _, txn := range cases {
		t.Run(string(txn.Type), func(t *testing.T) {
			row, err := mapping.ToModelTransaction(txn)
			require.NoError(t, err)
			back, err := mapping.ToDomainTransaction(row)
			require.NoError(t, err)
			assert.Equal(t, txn, back)
		})
	}
}

func TestSameCurrencyTransferStoresNoRate(t *testing.T) {
	txn := domain.Transaction{
		TransactionID: "t1", Type: domain.TransactionTypeTransfer, Status: domain.TransactionStatusCompleted,
		Details: domain.TransferDetails{
			FromAccountID: "a", ToAccountID: "b",
			FromAmount: decimal.NewFromInt(5), FromCurrencyCode: "TRY",
			ToAmount: decimal.NewFromInt(5), ToCurrencyCode: "TRY",
		},
	}
	row, err := mapping.ToModelTransaction(txn)
	require.NoError(t, err)
	assert.False(t, row.ExchangeRate.Valid)
	assert.False(t, row.ObligationID.Valid)
}

func TestUnknownTransactionTypeIsRejected(t *testing.T) {
	_, err := mapping.ToDomainTransaction(models.Transaction{TransactionID: "t1", TransactionType: "refund"})
	assert.Error(t, err)

	_, err = mapping.ToModelTransaction(domain.Transaction{TransactionID: "t1"})
	assert.Error(t, err)
}

func TestAuditColumnsSurviveEveryMapper(t *testing.T) {
	audit := domain.AuditFields{
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		CreatedBy:     "creator",
		LastUpdatedAt: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		LastUpdatedBy: "editor",
		Version:       7,
	}

	acc := domain.Account{AccountID: "a", AuditFields: audit}
	accRow := mapping.ToModelAccount(acc)
	assert.Equal(t, "creator", accRow.CreatedBy)
	assert.Equal(t, int64(7), accRow.Version)
	assert.Equal(t, audit, mapping.ToDomainAccount(accRow, nil).AuditFields)

	obl := domain.Obligation{ObligationID: "o1", AuditFields: audit}
	assert.Equal(t, audit, mapping.ToDomainObligation(mapping.ToModelObligation(obl)).AuditFields)

	p := domain.Personnel{PersonnelID: "p1", AuditFields: audit}
	assert.Equal(t, audit, mapping.ToDomainPersonnel(mapping.ToModelPersonnel(p)).AuditFields)

	txn := domain.Transaction{
		TransactionID: "t1", Type: domain.TransactionTypeIncome, Status: domain.TransactionStatusCompleted,
		Details:     domain.IncomeDetails{AccountID: "a", Amount: decimal.NewFromInt(1), CurrencyCode: "TRY"},
		AuditFields: audit,
	}
	row, err := mapping.ToModelTransaction(txn)
	require.NoError(t, err)
	assert.Equal(t, "editor", row.LastUpdatedBy)
	back, err := mapping.ToDomainTransaction(row)
	require.NoError(t, err)
	assert.Equal(t, audit, back.AuditFields)
}
