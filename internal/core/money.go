// Package core amount helpers.
//
// Balances are whole rupiah stored as int64; there are no fractional
// amounts anywhere in the system. Parsing accepts optional dot or comma
// thousand separators ("1.200.000", "1,200,000") and plain digits.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-typed amount to whole rupiah. Returns a
// ValidationError for anything that is not a positive integer.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "amount", Reason: "must not be empty"}
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	// Strip thousand separators, then require digits only.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, &ValidationError{Field: "amount", Reason: "must be a positive number"}
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if v <= 0 {
		return 0, &ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	return v, nil
}

// FormatRupiah renders an amount the way the dashboard shows it,
// e.g. 1200000 -> "Rp 1.200.000".
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("Rp ")
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}
