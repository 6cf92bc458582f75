package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Amount is an exact decimal money value stored in minor units (cents).
// Currency arithmetic never goes through float64.
type Amount int64

// ParseAmount parses a decimal string like "50", "50.5" or "-50.05".
// More than two fractional digits is an error, not a rounding.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	if whole == "" {
		whole = "0"
	}
	for frac != "" && len(frac) < 2 {
		frac += "0"
	}
	if frac == "" {
		frac = "00"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	value := units*100 + cents
	if negative {
		value = -value
	}
	return Amount(value), nil
}

// String renders the amount as a plain decimal with two fractional digits.
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Positive reports whether the amount is strictly greater than zero.
func (a Amount) Positive() bool {
	return a > 0
}

// MarshalJSON emits the amount as a JSON number with two decimal places so
// the ledger service receives an exact decimal, never a binary float.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both number and string encodings; the ledger service
// serializes BigDecimal as a number but some page envelopes quote it.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*a = 0
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
