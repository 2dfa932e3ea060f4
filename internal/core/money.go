// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Conversions from decimal input always
// round to two places, half away from zero (10.005 -> 10.01).
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents.
type Money struct {
	Cents int64
}

// maxAmount bounds parsed values so cents never overflow int64.
var maxAmount = decimal.New(1, 15)

// Exponent bounds for parsed input. Comparing or rounding a decimal rescales
// its coefficient, so extreme exponents are rejected before either.
const (
	maxExponent = 15
	minExponent = -30
)

// checkRange rejects amounts that cannot be represented in cents.
func checkRange(d decimal.Decimal) error {
	if e := d.Exponent(); e > maxExponent || e < minExponent {
		return Validationf("amount is out of range")
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return Validationf("amount is too large")
	}
	return nil
}

// NewMoney rounds d to two decimals and converts it to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Cents is a shorthand for building Money from an integer amount of cents.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// ParseMoney converts a decimal string to Money with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// The sign is preserved; range checks belong to Validate and ValidateNonNegative.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents (half away from zero)
//	ParseMoney("10.004") -> 1000 cents
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, Validationf("amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, Validationf("invalid amount %q", s)
	}
	if err := checkRange(d); err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

// Decimal returns the amount as a decimal with two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "450.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Validate requires a strictly positive amount.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateNonNegative allows zero.
func (m Money) ValidateNonNegative() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string and rounds it.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return Validationf("invalid amount %s", string(b))
	}
	if err := checkRange(d); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
