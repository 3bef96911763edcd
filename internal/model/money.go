package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ToCents converts an amount to integer cents.
func ToCents(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromCents converts integer cents back to an amount.
func FromCents(c int64) float64 {
	f, _ := decimal.New(c, -2).Float64()
	return f
}

// FormatBRL renders v the Brazilian way: "R$ 1.234,56".
func FormatBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
