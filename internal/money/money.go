// Package money holds the pure monetary arithmetic for documents: line
// amounts, subtotals, effective discount/tax amounts, totals, and balances.
// Nothing here touches storage or carries state; callers round at the point
// of persistence with Round2.
package money

import (
	"math"

	"invois/internal/domain"
)

// LineAmount computes quantity * unitPrice for a single line item.
func LineAmount(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// Subtotal sums the line amounts of all items.
func Subtotal(items []domain.LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += LineAmount(it.Quantity, it.UnitPrice)
	}
	return sum
}

// Effective resolves a discount or tax spec against a base amount: percent
// specs yield base*value/100, fixed specs yield the value as-is.
func Effective(value float64, typ domain.AmountType, base float64) float64 {
	if typ == domain.AmountTypePercent {
		return base * value / 100
	}
	return value
}

// Total computes subtotal - effectiveDiscount + effectiveTax. A large
// discount can drive this negative; the caller decides what that means.
func Total(subtotal, effectiveDiscount, effectiveTax float64) float64 {
	return subtotal - effectiveDiscount + effectiveTax
}

// AmountPaid sums payment amounts, returning 0 for an empty or nil list.
func AmountPaid(payments []domain.Payment) float64 {
	var sum float64
	for _, p := range payments {
		sum += p.Amount
	}
	return sum
}

// Outstanding is the remaining balance owed, floored at zero.
func Outstanding(total, amountPaid float64) float64 {
	return math.Max(0, total-amountPaid)
}

// Round2 rounds to 2 decimal places for persistence and display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
