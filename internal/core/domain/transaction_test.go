package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	now := time.Now()
	rate := decimal.NewFromInt(32)

	tests := []struct {
		name    string
		tx      domain.Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid income",
			tx: domain.Transaction{
				Type: domain.TransactionTypeIncome, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.IncomeDetails{AccountID: "acc_1", Amount: decimal.NewFromInt(500), CurrencyCode: "TRY"},
			},
		},
		{
			name: "zero amount after rounding",
			tx: domain.Transaction{
				Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.ExpenseDetails{AccountID: "acc_1", Amount: decimal.RequireFromString("0.004"), CurrencyCode: "TRY"},
			},
			wantErr: true,
			errMsg:  "amount must be greater than zero",
		},
		{
			name: "details do not match type",
			tx: domain.Transaction{
				Type: domain.TransactionTypeExpense, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.IncomeDetails{AccountID: "acc_1", Amount: decimal.NewFromInt(1), CurrencyCode: "TRY"},
			},
			wantErr: true,
			errMsg:  "do not match transaction type",
		},
		{
			name: "same-currency transfer with mismatched amounts",
			tx: domain.Transaction{
				Type: domain.TransactionTypeTransfer, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.TransferDetails{
					FromAccountID: "a", ToAccountID: "b",
					FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "TRY",
					ToAmount: decimal.NewFromInt(90), ToCurrencyCode: "TRY",
				},
			},
			wantErr: true,
			errMsg:  "fromAmount == toAmount",
		},
		{
			name: "transfer to the same account",
			tx: domain.Transaction{
				Type: domain.TransactionTypeTransfer, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.TransferDetails{
					FromAccountID: "a", ToAccountID: "a",
					FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "TRY",
					ToAmount: decimal.NewFromInt(100), ToCurrencyCode: "TRY",
				},
			},
			wantErr: true,
			errMsg:  "two different accounts",
		},
		{
			name: "cross-currency transfer without rate",
			tx: domain.Transaction{
				Type: domain.TransactionTypeTransfer, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.TransferDetails{
					FromAccountID: "a", ToAccountID: "b",
					FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "USD",
					ToAmount: decimal.NewFromInt(3200), ToCurrencyCode: "TRY",
				},
			},
			wantErr: true,
			errMsg:  "requires an exchange rate",
		},
		{
			name: "exchange on one account",
			tx: domain.Transaction{
				Type: domain.TransactionTypeExchange, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.ExchangeDetails{
					FromAccountID: "m", ToAccountID: "m",
					FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "USD",
					ToAmount: decimal.NewFromInt(3200), ToCurrencyCode: "TRY",
					ExchangeRate: rate,
				},
			},
		},
		{
			name: "exchange with wrong toAmount",
			tx: domain.Transaction{
				Type: domain.TransactionTypeExchange, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.ExchangeDetails{
					FromAccountID: "m", ToAccountID: "m",
					FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "USD",
					ToAmount: decimal.NewFromInt(3100), ToCurrencyCode: "TRY",
					ExchangeRate: rate,
				},
			},
			wantErr: true,
			errMsg:  "does not match",
		},
		{
			name: "exchange within one currency",
			tx: domain.Transaction{
				Type: domain.TransactionTypeExchange, Status: domain.TransactionStatusCompleted, TransactionDate: now,
				Details: domain.ExchangeDetails{
					FromAccountID: "m", ToAccountID: "n",
					FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "USD",
					ToAmount: decimal.NewFromInt(100), ToCurrencyCode: "USD",
					ExchangeRate: decimal.NewFromInt(1),
				},
			},
			wantErr: true,
			errMsg:  "two different currencies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_BalanceEffect(t *testing.T) {
	tx := domain.Transaction{
		Type:   domain.TransactionTypeTransfer,
		Status: domain.TransactionStatusCompleted,
		Details: domain.TransferDetails{
			FromAccountID: "b", ToAccountID: "a",
			FromAmount: decimal.NewFromInt(100), FromCurrencyCode: "TRY",
			ToAmount: decimal.NewFromInt(100), ToCurrencyCode: "TRY",
		},
	}

	effect := tx.BalanceEffect()
	assert.Len(t, effect, 2)
	// ordered by account id
	assert.Equal(t, "a", effect[0].AccountID)
	assert.True(t, effect[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "b", effect[1].AccountID)
	assert.True(t, effect[1].Amount.Equal(decimal.NewFromInt(-100)))

	tx.Status = domain.TransactionStatusPending
	assert.Empty(t, tx.BalanceEffect())
}

func TestNormalizeDeltas_MergesAndDropsZero(t *testing.T) {
	deltas := domain.NormalizeDeltas([]domain.BalanceDelta{
		{AccountID: "m", CurrencyCode: "usd", Amount: decimal.RequireFromString("-100.005")},
		{AccountID: "m", CurrencyCode: "TRY", Amount: decimal.NewFromInt(3200)},
		{AccountID: "m", CurrencyCode: "USD", Amount: decimal.RequireFromString("100.01")},
		{AccountID: "k", CurrencyCode: "EUR", Amount: decimal.NewFromInt(5)},
		{AccountID: "k", CurrencyCode: "EUR", Amount: decimal.NewFromInt(-5)},
	})

	if assert.Len(t, deltas, 1) {
		assert.Equal(t, "m", deltas[0].AccountID)
		assert.Equal(t, "TRY", deltas[0].CurrencyCode)
		assert.True(t, deltas[0].Amount.Equal(decimal.NewFromInt(3200)))
	}
}

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, domain.TransactionStatusPending.CanTransitionTo(domain.TransactionStatusCompleted))
	assert.True(t, domain.TransactionStatusPending.CanTransitionTo(domain.TransactionStatusCancelled))
	assert.False(t, domain.TransactionStatusCompleted.CanTransitionTo(domain.TransactionStatusCancelled))
	assert.False(t, domain.TransactionStatusCancelled.CanTransitionTo(domain.TransactionStatusCompleted))
}

func TestFormatTransactionNumber(t *testing.T) {
	assert.Equal(t, "TRX-2024-000001", domain.FormatTransactionNumber(2024, 1))
	assert.Equal(t, "TRX-2025-1234567", domain.FormatTransactionNumber(2025, 1234567))
}

func TestRoundRate(t *testing.T) {
	assert.Equal(t, "0.03125", domain.RoundRate(decimal.RequireFromString("0.0312500006")).String())
	assert.Equal(t, "1.23456789", domain.RoundRate(decimal.RequireFromString("1.234567885")).String())
	assert.True(t, domain.RoundRate(decimal.RequireFromString("0.000000004")).IsZero())
}

func TestExchangeValidatesAgainstRoundedRate(t *testing.T) {
	exchange := func(toAmount string) domain.Transaction {
		return domain.Transaction{
			Type: domain.TransactionTypeExchange, Status: domain.TransactionStatusCompleted, TransactionDate: time.Now(),
			Details: domain.ExchangeDetails{
				FromAccountID: "a", ToAccountID: "a",
				FromAmount: decimal.NewFromInt(10000000), FromCurrencyCode: "TRY",
				ToAmount: decimal.RequireFromString(toAmount), ToCurrencyCode: "USD",
				ExchangeRate: decimal.RequireFromString("0.0312500006"),
			},
		}
	}

	assert.NoError(t, exchange("312500").Validate())

	err := exchange("312500.01").Validate()
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	tiny := exchange("0")
	details := tiny.Details.(domain.ExchangeDetails)
	details.ExchangeRate = decimal.RequireFromString("0.000000004")
	tiny.Details = details
	assert.ErrorIs(t, tiny.Validate(), apperrors.ErrValidation)
}
