package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string (config values, upstream JSON)
// into a non-negative amount.
func ParseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", value, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", value)
	}
	return amount, nil
}

// RoundMoney normalizes an amount to two decimal places.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
