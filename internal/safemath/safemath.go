// internal/safemath/safemath.go
//
// Package safemath provides checked unsigned arithmetic. Every helper returns
// an error instead of wrapping so callers can abort a transaction cleanly.
package safemath

import (
	"errors"
	"math/bits"
)

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// Add returns a+b.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// Mul returns a*b.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// MulDiv returns floor(a*b/c) using a 128-bit intermediate product.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, ErrOverflow
	}
	quo, _ := bits.Div64(hi, lo, c)
	return quo, nil
}

// Div returns floor(a/b).
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// Pow returns base^exp by squaring, failing as soon as an intermediate
// result leaves the uint64 range.
func Pow(base, exp uint64) (uint64, error) {
	result := uint64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, err := Mul(result, base)
			if err != nil {
				return 0, err
			}
			result = r
		}
		exp >>= 1
		if exp > 0 {
			b, err := Mul(base, base)
			if err != nil {
				return 0, err
			}
			base = b
		}
	}
	return result, nil
}

// ApplyBps returns floor(amount*bps/10000).
func ApplyBps(amount uint64, bps uint16) (uint64, error) {
	return MulDiv(amount, uint64(bps), 10_000)
}

// AddU32 returns a+b for 32-bit counters.
func AddU32(a, b uint32) (uint32, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// AddInt64 returns a+b for signed timestamps.
func AddInt64(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOverflow
	}
	return sum, nil
}
