package storage

import (
	"math"
	"strconv"
	"strings"
)

// ParseInt accepts only the canonical base-10 form: no plus sign, no leading zeros, no spaces
func ParseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != s {
		return 0, false
	}
	return n, true
}

// ParseFloat accepts decimal and exponent forms plus inf/-inf.
// NaN, hexadecimal mantissas and the spelled out "infinity" are rejected
func ParseFloat(s string) (float64, bool) {
	if s == "" || strings.TrimSpace(s) != s {
		return 0, false
	}
	unsigned := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(unsigned, "0x") || unsigned == "infinity" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FormatFloat renders the shortest decimal that round-trips, without trailing zeros or exponent
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// addInt adds delta to the integer held in s
func addInt(s string, delta int64) (int64, error) {
	n, ok := ParseInt(s)
	if !ok {
		return 0, ErrNotAnInteger
	}
	if (delta > 0 && n > math.MaxInt64-delta) || (delta < 0 && n < math.MinInt64-delta) {
		return 0, errInvalid("increment or decrement would overflow")
	}
	return n + delta, nil
}

// addFloat adds delta to the float held in s
func addFloat(s string, delta float64) (float64, error) {
	f, ok := ParseFloat(s)
	if !ok {
		return 0, ErrNotAFloat
	}
	res := f + delta
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return 0, errInvalid("increment would produce NaN or Infinity")
	}
	return res, nil
}

func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
