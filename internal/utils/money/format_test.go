package money_test

import (
	"testing"

	"github.com/SscSPs/mfg_ledger/internal/utils/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"dollar grouping", "1234.56", "USD", "$1,234.56"},
		{"lira uses turkish separators", "1234.56", "TRY", "₺1.234,56"},
		{"rounds half up", "0.125", "USD", "$0.13"},
		{"negative", "-10", "USD", "-$10.00"},
		{"unknown currency", "5", "XYZ", "5.00 XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.FormatCurrency(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestLabelsAndSymbols(t *testing.T) {
	assert.Equal(t, "Turkish Lira", money.CurrencyLabel("TRY"))
	assert.Equal(t, "€", money.CurrencySymbol("eur"))
	assert.Equal(t, "ABC", money.CurrencyLabel("ABC"))
	assert.Equal(t, "12.35", money.FormatPlain(decimal.RequireFromString("12.345")))
}
