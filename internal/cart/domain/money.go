package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a currency amount to integer cents, rounding half away
// from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// Cents rounds an amount to currency precision for display and storage.
func Cents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
