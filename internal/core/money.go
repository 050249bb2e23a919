// Package core provides the domain model of the spending tracker.
//
// This file contains parsing of monetary amounts from user-supplied
// strings into whole đồng values.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts an amount string to whole đồng.
//
// It accepts plain digit runs and digit runs grouped with dots or commas
// ("1200000", "1.200.000", "1,200,000"). Signs are rejected; amounts are
// never negative. A zero amount is valid: zero-value transactions count
// toward transaction counts but are monetarily neutral.
//
// Examples:
//
//	ParseAmount("1200000")   -> 1200000, nil
//	ParseAmount("1.200.000") -> 1200000, nil
//	ParseAmount("0")         -> 0, nil
//	ParseAmount("-5")        -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// Separators must sit between digits, never lead or trail.
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") ||
		strings.HasPrefix(s, ",") || strings.HasSuffix(s, ",") {
		return 0, ErrInvalidAmount
	}
	var b strings.Builder
	prevSep := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			prevSep = false
		case r == '.' || r == ',':
			if prevSep {
				return 0, ErrInvalidAmount
			}
			prevSep = true
		default:
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
