package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is the Ghanaian cedi, the campus currency.
const CurrencySymbol = "₵"

// Amount is a two-decimal-place currency value.
type Amount = decimal.Decimal

// Zero returns the zero amount.
func Zero() Amount {
	return decimal.Zero
}

// FromFloat converts a float price into a 2dp amount.
func FromFloat(v float64) Amount {
	return decimal.NewFromFloat(v).Round(2)
}

// FromString parses a decimal string into a 2dp amount.
func FromString(v string) (Amount, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", v, err)
	}
	return d.Round(2), nil
}

// LineTotal computes unit price times quantity, rounded to 2dp.
func LineTotal(unitPrice Amount, quantity int) Amount {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// IsNegative reports whether the amount is below zero.
func IsNegative(a Amount) bool {
	return a.IsNegative()
}

// Format renders the amount with the currency symbol, e.g. "₵12.50".
func Format(a Amount) string {
	return CurrencySymbol + a.StringFixed(2)
}
