// Package logspace provides the numerically stable log-space addition used
// throughout the cloud-search and bounded Forward/Backward recurrences, plus
// the handful of log/real conversions needed at profile load and final score
// reporting time.
//
// All scores in this repository are natural-log probabilities (or, for
// emission/transition scores, natural-log odds). Summing probabilities in
// real space would underflow across the length of a typical profile, so
// every "add two probabilities" in the recurrences is actually a call to
// Sum, which computes log(e^x + e^y) without leaving log space.
package logspace

import (
	"math"
	"sync"
)

// NegInf is log-space zero: the score of an impossible path.
var NegInf = math.Inf(-1)

// tableSize and scale mirror the source's lookup table: entries cover
// d in [0, tableSize) at a resolution of 1/scale nats.
const (
	tableSize = 16000
	scale     = 1000.0

	// guardBand is the point past which log(1+e^-d) (about 1.5e-7 at 15.7)
	// is below single-precision resolution, so Sum returns the larger
	// operand unchanged. The source documents this threshold as ~15.7 nats.
	guardBand = 15.7
)

var (
	initOnce sync.Once
	table    [tableSize]float64
)

// Init builds the log-sum lookup table. It is safe to call from multiple
// goroutines and safe to call more than once; only the first call does any
// work. Sum calls it automatically, so callers never need to invoke it
// directly except to pay the (sub-millisecond) initialization cost before a
// latency-sensitive first call.
func Init() {
	initOnce.Do(func() {
		for d := 0; d < tableSize; d++ {
			table[d] = math.Log1p(math.Exp(-float64(d) / scale))
		}
	})
}

// Sum returns log(e^x + e^y), computed without leaving log space. It is the
// "+" of log-space arithmetic: every path-combining step in the cloud search
// and the bounded Forward/Backward recurrences goes through this function
// instead of math.Log(math.Exp(x)+math.Exp(y)).
//
// Sum(NegInf, y) == y for any y, and Sum is commutative and (within floating
// point error) associative.
func Sum(x, y float64) float64 {
	Init()

	if x == NegInf {
		return y
	}
	if y == NegInf {
		return x
	}

	hi, lo := x, y
	if lo > hi {
		hi, lo = lo, hi
	}
	d := hi - lo
	if d >= guardBand {
		return hi
	}
	idx := int(d * scale)
	if idx >= tableSize {
		idx = tableSize - 1
	}
	return hi + table[idx]
}

// Sum3 and Sum4 chain Sum across three and four operands; the cloud-search
// and bounded recurrences combine up to four incoming paths (M/I/D plus a
// free-begin or free-end term) per cell, and spelling this out avoids
// allocating a slice per cell in the hot loop.
func Sum3(x, y, z float64) float64 {
	return Sum(Sum(x, y), z)
}

func Sum4(w, x, y, z float64) float64 {
	return Sum(Sum(w, x), Sum(y, z))
}

// NegLnToReal converts a negative-log-probability (the convention used by
// some profile file formats, where smaller values mean more probable) to a
// real-space probability: exp(-x).
func NegLnToReal(x float64) float64 {
	return math.Exp(-x)
}

// RealToNegLn converts a real-space probability to a negative-log
// probability: -log(x). Used only at profile load and final score
// reporting, never in the hot recurrence path.
func RealToNegLn(x float64) float64 {
	return -math.Log(x)
}
