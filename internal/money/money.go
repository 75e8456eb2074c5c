// Package money provides the rounding rule shared by every component that
// touches amounts. All stored and reported money values have at most two
// decimal digits; intermediate allocation math stays at full precision.
package money

import "math"

// Round rounds to 2 decimals, with exact halves rounding toward positive
// infinity. Non-finite input rounds to 0, and negative zero normalizes to 0,
// so repeated independent executions agree bit-for-bit.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r := math.Floor(v*100+0.5) / 100
	if r == 0 {
		return 0
	}
	return r
}

// IsFinite reports whether v is a usable amount (not NaN or ±Inf).
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
