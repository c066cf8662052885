package lines

import "cmp"

// Clamp saturates v to [lo, hi]. Every position and line query in this
// package routes out-of-range input through Clamp instead of failing.
// When hi < lo the result is lo.
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v < lo || hi < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
