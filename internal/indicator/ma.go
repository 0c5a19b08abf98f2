// Package indicator derives technical-pattern columns over a daily series:
// moving averages, clustering and breakout flags, structural swing points,
// previous-swing back-references, and the high-point trend line.
//
// Column derivation has a fixed dependency order; Annotate runs the whole
// pipeline and is the only entry point callers should use. Float columns use
// NaN for rows with insufficient history, flag columns use
// domain.FlagUndefined, and both propagate downstream instead of collapsing
// to false.
package indicator

import "math"

// sma returns the simple moving average of values over window n. The first
// n-1 entries are NaN.
func sma(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// ema returns the exponential moving average of values with smoothing factor
// 2/(n+1). The recursion is seeded with the first value, so every entry from
// row 0 is defined.
func ema(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(n+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

// defined reports whether a float column value is present for a row.
func defined(v float64) bool { return !math.IsNaN(v) }
