package employee

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordSeparator splits a first-last-pay record.
const RecordSeparator = "-"

// FromString builds an employee from a "first-last-pay" record and counts it.
// The record must have exactly three fields and a base-10 pay.
func FromString(record string) (*Employee, error) {
	parts := strings.Split(record, RecordSeparator)
	if len(parts) != 3 {
		return nil, ErrMalformedRecord.With(fmt.Errorf("%q has %d fields, want 3", record, len(parts)))
	}

	pay, err := ParsePay(parts[2])
	if err != nil {
		return nil, ErrMalformedRecord.With(err)
	}

	return New(parts[0], parts[1], pay), nil
}

// ParsePay parses a base-10 integer. Underscores are accepted between
// digits as group separators, e.g. "110_000".
func ParsePay(s string) (int, error) {
	digits, err := stripDigitSeparators(s)
	if err != nil {
		return 0, err
	}
	pay, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("pay %q is not an integer", s)
	}
	return pay, nil
}

func stripDigitSeparators(s string) (string, error) {
	if !strings.Contains(s, "_") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' {
			b.WriteByte(c)
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", fmt.Errorf("pay %q has a misplaced underscore", s)
		}
	}
	return b.String(), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
