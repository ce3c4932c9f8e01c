package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToCents converts a price to integer cents, rounding half away from
// zero. Storage keeps every amount in cents so SUM stays exact.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents is the inverse of ToCents.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// FormatPrice renders an amount as "$12.99".
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
