// Package core holds the ledger domain: transaction types, fixed-point
// money, calendar dates and the affordability projection.
//
// This file contains money parsing and formatting. Amounts are kept as
// integer cents (2-digit scale) so that ledger sums never accumulate
// floating-point error.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point amount with 2-digit scale. Cents may be negative:
// outgoing ledger rows are stored with negative amounts.
type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a positive decimal string to cents with
// half-up rounding on the third decimal place. It accepts both dot (12.34)
// and comma (12,34) separators. Returns ErrInvalidAmount for malformed
// input, signed input, or amounts below 0.01.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Callers pass magnitudes; the sign convention is applied by TxType.
		return 0, ErrInvalidAmount
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
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// String formats the amount as a plain decimal with two digits, e.g.
// "1250.00" or "-42.50". Used for JSON payloads and advisor notes.
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// HalfUpCents rounds a fractional cent value to whole cents, half away
// from zero. Matches HALF_UP rounding of the 2-digit decimal scale.
func HalfUpCents(v float64) int64 {
	if v < 0 {
		return -int64(math.Floor(-v + 0.5))
	}
	return int64(math.Floor(v + 0.5))
}

// FormatCentsFloat formats a possibly fractional cent value with two decimal
// digits of the major unit, rounding half up. Used by advisor notes where the
// daily burn rate is an average and may not be a whole number of cents.
func FormatCentsFloat(v float64) string {
	return Money{Cents: HalfUpCents(v)}.String()
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
