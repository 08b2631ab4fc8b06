// Package phone normalizes Egyptian phone numbers. The normalized form is
// the customer's natural key, so every write path must go through Normalize
// before comparing or persisting a number.
package phone

import "strings"

var arabicDigits = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// Normalize translates Arabic-Indic numerals to ASCII, strips whitespace
// and a leading "+2" country prefix, and drops any remaining non-digit
// characters. Returns "" for empty or digit-free input.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if d, ok := arabicDigits[r]; ok {
			b.WriteRune(d)
			continue
		}
		b.WriteRune(r)
	}
	s := strings.Join(strings.Fields(b.String()), "")
	s = strings.TrimPrefix(s, "+2")

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// IsValid reports whether a normalized number is a complete Egyptian
// mobile number (11 digits).
func IsValid(normalized string) bool {
	return len(normalized) == 11
}
