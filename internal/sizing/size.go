// Package sizing provides overflow-safe offset and length arithmetic.
package sizing

import "math"

// AddInt adds two non-negative ints, returning (result, false) on overflow
// or when either operand is negative.
func AddInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// Within reports whether [off, off+n) lies inside [0, limit).
func Within(off, n, limit int) bool {
	end, ok := AddInt(off, n)
	if !ok {
		return false
	}
	return end <= limit
}

// Overlaps reports whether [a, a+aLen) and [b, b+bLen) intersect.
// Empty ranges never overlap.
func Overlaps(a, aLen, b, bLen int) bool {
	if aLen == 0 || bLen == 0 {
		return false
	}
	return a < b+bLen && b < a+aLen
}
