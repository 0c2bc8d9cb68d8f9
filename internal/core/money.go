// Package core provides the pure domain: money, dates, transactions and
// the recurrence rules that expand them.
//
// This file contains monetary parsing. Amounts are held as integer cents
// to keep arithmetic exact; floats only appear at the display boundary.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Money is an exact amount in cents.
type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place.
//
// It accepts an optional leading sign, both dot (12.34) and comma
// (12,34) decimal separators, and tolerates apostrophe thousands
// grouping (1'234.50) and interior spaces. Rounding is half-up on the
// magnitude, so negative amounts round away from zero. Returns an error
// for empty or otherwise malformed input.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("-5")     -> -500, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Strip grouping noise, then normalize decimal comma to dot.
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	neg := false
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		neg = s[0] == '-'
		s = s[1:]
		if s == "" {
			return 0, ErrInvalidAmount
		}
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// NormalizeAmount coerces an arbitrary decoded JSON value into Money.
// Strings, numbers and json.Number are parsed via ParseDecimalToCents;
// anything that fails to parse (nil, booleans, garbage strings) yields
// exactly zero cents rather than an error. Ingest boundaries rely on
// this: a bad amount becomes a zero-amount record, never a rejection.
func NormalizeAmount(v any) Money {
	var s string
	switch x := v.(type) {
	case nil:
		return Money{}
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return Money{Cents: int64(x) * 100}
	case int64:
		return Money{Cents: x * 100}
	default:
		return Money{}
	}
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}
	}
	return Money{Cents: cents}
}

// Value returns the amount in currency units as a float64 for display.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Value() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) String() string {
	return strconv.FormatFloat(m.Value(), 'f', 2, 64)
}

// MarshalJSON emits the amount as a plain number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a number or string and normalizes leniently.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" {
		*m = Money{}
		return nil
	}
	*m = NormalizeAmount(s)
	return nil
}
