// Package money holds the monetary conventions of the back office.
// All amounts are EGP, carried as shopspring decimals; display formatting
// is a late-stage concern and never feeds back into arithmetic.
package money

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the shop trades in.
const Currency = "EGP"

// ParseDisplay converts a legacy display price such as "150 EGP" or
// "EGP 79.99" into a decimal amount. Everything except digits and the
// decimal point is stripped, so the function is idempotent: feeding its
// own output back in yields the same value. Unparsable input degrades
// to zero rather than failing.
func ParseDisplay(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders an amount for display, e.g. "150.00 EGP".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + Currency
}

// ClampNonNegative floors negative amounts to zero. Fee and price inputs
// are clamped rather than rejected so a half-typed form never errors.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
