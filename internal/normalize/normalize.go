// Package normalize converts raw dataset text into typed values.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedNumber is returned for non-empty text that is neither a
// sentinel nor a number.
var ErrMalformedNumber = errors.New("malformed number")

// NaN is the textual marker the datasets use for missing numbers.
const NaN = "NaN"

// IsSentinel reports whether raw stands for a missing number.
func IsSentinel(raw string) bool {
	return raw == "" || raw == NaN
}

// Float parses raw as a finite decimal float64, ignoring surrounding
// whitespace. Sentinels yield 0.
func Float(raw string) (float64, error) {
	if IsSentinel(raw) {
		return 0, nil
	}
	s := strings.TrimSpace(raw)
	if s == "" || isHex(s) {
		return 0, malformed(raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, malformed(raw)
	}
	return f, nil
}

// Int parses raw as a float64 first, so "42.0" is accepted, then
// truncates toward zero. Sentinels yield 0. Values outside the int64
// range are malformed.
func Int(raw string) (int64, error) {
	f, err := Float(raw)
	if err != nil {
		return 0, err
	}
	if f < math.MinInt64 || f >= 1<<63 {
		return 0, malformed(raw)
	}
	return int64(f), nil
}

// isHex reports whether s carries a hexadecimal prefix, which ParseFloat
// accepts but the datasets never use.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func malformed(raw string) error {
	return fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
}

// Date returns nil for an empty issue date and the text unmodified otherwise.
func Date(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}
