package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits every persisted amount carries.
const MoneyScale int32 = 2

// RateScale is the number of fractional digits a stored exchange rate keeps.
const RateScale int32 = 8

// RoundRate rounds an exchange rate to RateScale digits, half away from zero.
func RoundRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Round(RateScale)
}

// RoundMoney rounds d to MoneyScale digits, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// IsPositiveMoney reports whether d is still positive after rounding.
func IsPositiveMoney(d decimal.Decimal) bool {
	return RoundMoney(d).IsPositive()
}
