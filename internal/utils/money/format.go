package money

import (
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatCurrency renders amount with the currency symbol and the grouping and
// decimal separators of the currency's locale, e.g. "₺1.234,56" or "$1,234.56".
// Unknown codes fall back to "<amount> <code>".
func FormatCurrency(amount decimal.Decimal, currencyCode string) string {
	rounded := domain.RoundMoney(amount)
	c, ok := domain.LookupCurrency(currencyCode)
	if !ok {
		return rounded.StringFixed(domain.MoneyScale) + " " + currencyCode
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	digits := p.Sprint(number.Decimal(rounded.Abs().InexactFloat64(), number.Scale(int(domain.MoneyScale))))
	if rounded.IsNegative() {
		return "-" + c.Symbol + digits
	}
	return c.Symbol + digits
}

// FormatPlain renders amount with exactly two fractional digits and no symbol.
func FormatPlain(amount decimal.Decimal) string {
	return domain.RoundMoney(amount).StringFixed(domain.MoneyScale)
}

// CurrencyLabel returns the display name of a currency, or the code itself.
func CurrencyLabel(currencyCode string) string {
	if c, ok := domain.LookupCurrency(currencyCode); ok {
		return c.Name
	}
	return currencyCode
}

// CurrencySymbol returns the symbol of a currency, or the code itself.
func CurrencySymbol(currencyCode string) string {
	if c, ok := domain.LookupCurrency(currencyCode); ok {
		return c.Symbol
	}
	return currencyCode
}
