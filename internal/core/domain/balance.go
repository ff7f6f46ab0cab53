package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceDelta is a signed change to one (account, currency) balance.
type BalanceDelta struct {
	AccountID    string          `json:"accountID"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

// Negate returns the inverse delta.
func (d BalanceDelta) Negate() BalanceDelta {
	return BalanceDelta{AccountID: d.AccountID, CurrencyCode: d.CurrencyCode, Amount: d.Amount.Neg()}
}

// NormalizeDeltas rounds each delta, merges deltas hitting the same
// (account, currency) pair, drops net-zero entries and orders the result by
// account id then currency. Every writer applies deltas in this order.
func NormalizeDeltas(deltas []BalanceDelta) []BalanceDelta {
	type key struct{ account, currency string }
	merged := make(map[key]decimal.Decimal, len(deltas))
	for _, d := range deltas {
		k := key{d.AccountID, NormalizeCurrencyCode(d.CurrencyCode)}
		merged[k] = merged[k].Add(RoundMoney(d.Amount))
	}
	out := make([]BalanceDelta, 0, len(merged))
	for k, amt := range merged {
		if amt.IsZero() {
			continue
		}
		out = append(out, BalanceDelta{AccountID: k.account, CurrencyCode: k.currency, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].CurrencyCode < out[j].CurrencyCode
	})
	return out
}

// InvertDeltas negates every delta.
func InvertDeltas(deltas []BalanceDelta) []BalanceDelta {
	out := make([]BalanceDelta, len(deltas))
	for i, d := range deltas {
		out[i] = d.Negate()
	}
	return out
}

// DeltaAccountIDs returns the distinct account ids touched, ascending.
func DeltaAccountIDs(deltas []BalanceDelta) []string {
	seen := make(map[string]struct{}, len(deltas))
	ids := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := seen[d.AccountID]; ok {
			continue
		}
		seen[d.AccountID] = struct{}{}
		ids = append(ids, d.AccountID)
	}
	sort.Strings(ids)
	return ids
}
