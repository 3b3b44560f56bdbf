package wcbridge

import "math"

// MicrosecondTimeBase is the timebase of every platform-side timestamp.
var MicrosecondTimeBase = Rational{Num: 1, Den: 1000000}

// Rational is a timebase or frame rate expressed as Num/Den.
type Rational struct {
	Num int
	Den int
}

// IsZero reports whether the rational is unset.
func (r Rational) IsZero() bool { return r.Num == 0 }

// Float64 returns Num/Den, or 0 when Den is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// I64 is a signed 64-bit value stored as the two 32-bit halves the engine's
// packet and frame structs carry (pts/ptshi, duration/durationhi, ...).
// Hi holds the upper word with its sign; Lo holds the raw lower word.
type I64 struct {
	Lo uint32
	Hi int32
}

// SplitI64 splits v into its low and high words (two's complement).
func SplitI64(v int64) I64 {
	return I64{Lo: uint32(v), Hi: int32(v >> 32)}
}

// SplitFloat rounds f to the nearest integer and splits it.
// Values outside the int64 range saturate.
func SplitFloat(f float64) I64 {
	return SplitI64(roundToInt64(f))
}

// Int64 joins the two halves.
func (v I64) Int64() int64 {
	return int64(v.Hi)<<32 | int64(v.Lo)
}

// Float64 returns the joined value as a float64. Values beyond 2^53 lose
// precision the same way the engine's own helpers do.
func (v I64) Float64() float64 {
	return float64(v.Int64())
}

// roundHalfUp rounds to the nearest integer, ties toward positive infinity.
func roundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}

func roundToInt64(f float64) int64 {
	r := roundHalfUp(f)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	}
	return int64(r)
}

// ToMicroseconds rescales a timestamp in tb units to microseconds.
func ToMicroseconds(v float64, tb Rational) int64 {
	if tb.Den == 0 {
		return roundToInt64(v)
	}
	return roundToInt64(v * float64(tb.Num) / float64(tb.Den) * 1000000)
}

// FromMicroseconds rescales a microsecond timestamp into tb units.
func FromMicroseconds(us int64, tb Rational) int64 {
	if tb.Num == 0 {
		return us
	}
	return roundToInt64(float64(us) * float64(tb.Den) / float64(tb.Num) / 1000000)
}
