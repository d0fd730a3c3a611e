// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents; parsing and wire formatting go through
// decimal so no float ever touches a stored value.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to signed cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The sign
// is preserved so callers can tell "negative" from "not a number"; a Money
// used by a Transaction must still pass Validate.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
//	ParseAmount("-3")     -> -300
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents, half away from zero.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	// rescaling a huge exponent allocates 10^|exp|, so bound it before any
	// Shift, Round or Cmp touches the value
	if exp := d.Exponent(); exp < -maxExponent || exp > maxExponent {
		return Money{}, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// maxCents keeps sums of realistic ledgers far from int64 overflow.
const maxCents = 1 << 53

// maxExponent bounds the decimal exponent accepted from input.
const maxExponent = 18

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Euros returns the value as a float64 for display purposes only.
func (m Money) Euros() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
