// Package core holds the pure ledger domain: entities, validation, the week
// clock, and amount parsing. It has no dependencies outside the standard
// library.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to a whole currency amount.
//
// Amounts in this ledger are whole units — there are no fractional paise — so
// a fractional part is only accepted when it is all zeros ("250.00"). Both dot
// and comma separators are tolerated. Negative, zero, and malformed inputs
// are rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewValidationError("amount", "required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, NewValidationError("amount", "must be positive")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, NewValidationError("amount", "not a number")
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, NewValidationError("amount", "not a number")
		}
	}
	if strings.Trim(fracPart, "0") != "" {
		return 0, NewValidationError("amount", "fractional amounts are not supported")
	}

	v, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, NewValidationError("amount", "not a number")
	}
	if v <= 0 {
		return 0, NewValidationError("amount", "must be positive")
	}
	return v, nil
}
