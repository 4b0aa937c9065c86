package pricing

import (
	"fmt"
	"math"
)

// Money represents a monetary value stored in centavos.
type Money = int64

// FromFloat converts an operator-entered decimal amount into centavos,
// rounding half up. All decimal input crosses this boundary exactly once;
// everything downstream is integer arithmetic.
func FromFloat(v float64) Money {
	return Money(math.Floor(v*100 + 0.5))
}

// Float converts centavos back to a decimal amount for JSON responses.
func Float(m Money) float64 {
	return float64(m) / 100
}

// Format renders centavos as a two-decimal string for receipts.
func Format(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}
