package accounting

import (
	"sort"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NetEffects sums the balance effect of every completed transaction, keyed by
// account id then currency code.
func NetEffects(transactions []domain.Transaction) map[string]map[string]decimal.Decimal {
	effects := make(map[string]map[string]decimal.Decimal)
	for _, txn := range transactions {
		for _, delta := range txn.BalanceEffect() {
			byCurrency, ok := effects[delta.AccountID]
			if !ok {
				byCurrency = make(map[string]decimal.Decimal)
				effects[delta.AccountID] = byCurrency
			}
			byCurrency[delta.CurrencyCode] = byCurrency[delta.CurrencyCode].Add(delta.Amount)
		}
	}
	return effects
}

// Discrepancy is a currency whose stored balance disagrees with the ledger.
type Discrepancy struct {
	CurrencyCode string          `json:"currencyCode"`
	Stored       decimal.Decimal `json:"stored"`
	Expected     decimal.Decimal `json:"expected"`
	Difference   decimal.Decimal `json:"difference"`
}

// Reconcile compares an account's stored balances with the sum of completed
// transaction effects on it. An empty result means the account is consistent.
func Reconcile(account domain.Account, transactions []domain.Transaction) []Discrepancy {
	expected := NetEffects(transactions)[account.AccountID]
	currencies := make(map[string]struct{}, len(account.Balances)+len(expected))
	for c := range account.Balances {
		currencies[c] = struct{}{}
	}
	for c := range expected {
		currencies[c] = struct{}{}
	}

	var out []Discrepancy
	for c := range currencies {
		stored := account.Balances[c]
		want := expected[c]
		if !stored.Equal(want) {
			out = append(out, Discrepancy{
				CurrencyCode: c,
				Stored:       stored,
				Expected:     want,
				Difference:   stored.Sub(want),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out
}
