package domain

import (
	"sort"
	"strings"
)

// Currency describes a currency the ledger can hold balances in.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO 4217, e.g. "TRY"
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Locale       string `json:"locale"` // BCP 47 tag used when formatting amounts
}

const (
	CurrencyTRY = "TRY"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
)

var currencies = map[string]Currency{
	CurrencyTRY: {CurrencyCode: CurrencyTRY, Symbol: "₺", Name: "Turkish Lira", Locale: "tr-TR"},
	CurrencyUSD: {CurrencyCode: CurrencyUSD, Symbol: "$", Name: "US Dollar", Locale: "en-US"},
	CurrencyEUR: {CurrencyCode: CurrencyEUR, Symbol: "€", Name: "Euro", Locale: "de-DE"},
	CurrencyGBP: {CurrencyCode: CurrencyGBP, Symbol: "£", Name: "British Pound", Locale: "en-GB"},
}

// NormalizeCurrencyCode trims and upper-cases a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupCurrency returns the metadata for code.
func LookupCurrency(code string) (Currency, bool) {
	c, ok := currencies[NormalizeCurrencyCode(code)]
	return c, ok
}

// IsSupportedCurrency reports whether code is in the currency registry.
func IsSupportedCurrency(code string) bool {
	_, ok := LookupCurrency(code)
	return ok
}

// SupportedCurrencies lists the registry ordered by code.
func SupportedCurrencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out
}
