package indicator

import (
	"math"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
)

// swingHalfWindow is the number of rows on each side of a candidate pivot.
// The full centered window is 2*swingHalfWindow+1 rows.
const swingHalfWindow = 10

// swingHighs flags rows whose High is the maximum over the centered window.
// Rows within half of either boundary have no full window and are never
// flagged.
func swingHighs(highs []float64, half int) []bool {
	out := make([]bool, len(highs))
	for i := half; i < len(highs)-half; i++ {
		max := math.Inf(-1)
		for j := i - half; j <= i+half; j++ {
			if highs[j] > max {
				max = highs[j]
			}
		}
		out[i] = highs[i] >= max
	}
	return out
}

// swingLows is the symmetric definition over Low and the window minimum.
func swingLows(lows []float64, half int) []bool {
	out := make([]bool, len(lows))
	for i := half; i < len(lows)-half; i++ {
		min := math.Inf(1)
		for j := i - half; j <= i+half; j++ {
			if lows[j] < min {
				min = lows[j]
			}
		}
		out[i] = lows[i] <= min
	}
	return out
}

// setSwings fills the swing-point columns.
func setSwings(s *domain.Series) {
	highs := make([]float64, s.Len())
	lows := make([]float64, s.Len())
	for i, b := range s.Bars {
		highs[i] = b.High
		lows[i] = b.Low
	}
	s.SwingHigh = swingHighs(highs, swingHalfWindow)
	s.SwingLow = swingLows(lows, swingHalfWindow)
}

// setPrevSwings tracks, at each row, the most recent swing point strictly
// before it. The running value is recorded into the row before it is
// updated, so a swing-high row's recorded "previous" is always the swing
// before it, never itself. Row 0 carries no previous value by construction.
//
// CrossedPrevHigh is true iff a previous swing high exists and the row's
// High strictly exceeds it; BrokePrevLow is the mirror on Low. Presence is
// an explicit flag, never a sentinel comparison.
func setPrevSwings(s *domain.Series) {
	n := s.Len()
	s.PrevHigh = nanColumn(n)
	s.PrevHighDate = make([]string, n)
	s.HasPrevHigh = make([]bool, n)
	s.PrevLow = nanColumn(n)
	s.PrevLowDate = make([]string, n)
	s.HasPrevLow = make([]bool, n)
	s.CrossedPrevHigh = make([]bool, n)
	s.BrokePrevLow = make([]bool, n)

	var (
		prevHigh, prevLow         float64
		prevHighDate, prevLowDate string
		hasHigh, hasLow           bool
	)

	for i := 1; i < n; i++ {
		if hasHigh {
			s.PrevHigh[i] = prevHigh
			s.PrevHighDate[i] = prevHighDate
			s.HasPrevHigh[i] = true
			s.CrossedPrevHigh[i] = s.Bars[i].High > prevHigh
		}
		if hasLow {
			s.PrevLow[i] = prevLow
			s.PrevLowDate[i] = prevLowDate
			s.HasPrevLow[i] = true
			s.BrokePrevLow[i] = s.Bars[i].Low < prevLow
		}

		// Update after recording.
		if s.SwingHigh[i] {
			prevHigh = s.Bars[i].High
			prevHighDate = s.Bars[i].DateKey()
			hasHigh = true
		}
		if s.SwingLow[i] {
			prevLow = s.Bars[i].Low
			prevLowDate = s.Bars[i].DateKey()
			hasLow = true
		}
	}
}

func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
