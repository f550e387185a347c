// Package types provides common domain value types.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// Prefer NewMoneyFromString for values parsed from input.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds a monetary value to 2 decimal places (half up).
// Every stored amount in the system is rounded this way.
func Round2(m Money) Money {
	return m.Round(2)
}

// Quantity is a fixed-point stock quantity with 2 decimal places
// (scale = 100).
//
// Rationale:
// - Stock levels are tracked to hundredths (0.25 kg, 1.50 l) and every
//   adjustment in the system rounds to 2 decimals
// - Stored as BIGINT in the database (scaled integer), so arithmetic on
//   stock never accumulates floating point error
// - JSON remains a number with up to 2 decimals
type Quantity int64

const QuantityScale int64 = 100

// NewQuantityFromFloat64 converts a float to Quantity, rounding to 2 decimals.
func NewQuantityFromFloat64(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

// NewQuantityFromInt converts a whole-unit count to Quantity.
func NewQuantityFromInt(v int64) Quantity {
	return Quantity(v * QuantityScale)
}

// NewQuantityFromInt64Scaled wraps an already-scaled value.
func NewQuantityFromInt64Scaled(v int64) Quantity { return Quantity(v) }

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal converts the quantity to an exact decimal value.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -2)
}

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) Add(other Quantity) Quantity { return q + other }

func (q Quantity) Sub(other Quantity) Quantity { return q - other }

// MulInt multiplies the quantity by a whole number (e.g. per-unit material
// usage times the number of sale items).
func (q Quantity) MulInt(n int64) Quantity { return Quantity(int64(q) * n) }

// Floor truncates the quantity to whole units (toward zero). Used for
// discrete units, where fractional input is floored before use.
func (q Quantity) Floor() Quantity {
	return Quantity((int64(q) / QuantityScale) * QuantityScale)
}

// IsWhole reports whether the quantity has no fractional part.
func (q Quantity) IsWhole() bool {
	return int64(q)%QuantityScale == 0
}

// String returns a decimal string with 2 fractional digits.
func (q Quantity) String() string {
	neg := q < 0
	v := q
	if neg {
		v = -v
	}
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if neg {
		return fmt.Sprintf("-%d.%02d", intPart, frac)
	}
	return fmt.Sprintf("%d.%02d", intPart, frac)
}

// MarshalJSON encodes Quantity as a JSON number, preserving 2 digits.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string and parses to
// fixed-point (2 digits).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseQuantityString(s)
		if err != nil {
			return err
		}
		*q = parsed
		return nil
	}

	parsed, err := parseQuantityString(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	// Exponent form is parsed through float to keep the common path strict.
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		return NewQuantityFromFloat64(f), nil
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
	}

	parts := strings.SplitN(s, ".", 2)
	intPartStr := parts[0]
	fracStr := ""
	if len(parts) == 2 {
		fracStr = parts[1]
	}

	if intPartStr == "" {
		intPartStr = "0"
	}
	intPart, err := strconv.ParseInt(intPartStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity integer part: %w", err)
	}

	// Normalize fractional part to 2 digits (pad right, truncate extra digits).
	if len(fracStr) > 2 {
		fracStr = fracStr[:2]
	}
	for len(fracStr) < 2 {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity fractional part: %w", err)
	}

	return Quantity(sign * (intPart*QuantityScale + frac)), nil
}
