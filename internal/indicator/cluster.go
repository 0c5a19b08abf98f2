package indicator

import (
	"math"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
)

// clusterThreshold is the maximum (max-min)/max spread across a scale's
// columns for the row to count as clustered.
const clusterThreshold = 0.02

// scale is one moving-average band: the close plus a subset of the MA
// columns, examined together for convergence.
type scale struct {
	cols [][]float64
}

// rowExtent returns the min and max across the scale's columns at row i.
// ok is false when any column is undefined at that row.
func (sc scale) rowExtent(i int) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, col := range sc.cols {
		v := col[i]
		if !defined(v) {
			return 0, 0, false
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}

// setClusters fills the clustering flags for all three scales. A row where
// any moving-average column is still undefined stays FlagUndefined; the flag
// is never coerced to false by comparing against NaN.
func setClusters(s *domain.Series) {
	n := s.Len()
	closes := closeColumn(s)

	wide := scale{cols: [][]float64{closes, s.SMA5, s.SMA10, s.SMA20, s.SMA60, s.SMA120, s.EMA20, s.EMA60, s.EMA120}}
	mid := scale{cols: [][]float64{closes, s.SMA5, s.SMA10, s.SMA20, s.SMA60, s.EMA20, s.EMA60}}
	narrow := scale{cols: [][]float64{closes, s.SMA5, s.SMA10, s.SMA20, s.EMA20}}

	s.ClusterWide = make([]domain.Flag, n)
	s.ClusterMid = make([]domain.Flag, n)
	s.ClusterNarrow = make([]domain.Flag, n)

	for i := 0; i < n; i++ {
		if !rowDefined(s, i) {
			continue // all three flags stay undefined
		}

		s.ClusterWide[i] = clusterFlag(wide, i)

		// The mid band additionally wants the long EMA above the long SMA.
		midFlag := clusterFlag(mid, i)
		if midFlag.True() && !(s.EMA120[i] > s.SMA120[i]) {
			midFlag = domain.FlagFalse
		}
		s.ClusterMid[i] = midFlag

		// The narrow band requires trend alignment of the shorter averages.
		narrowFlag := clusterFlag(narrow, i)
		if narrowFlag.True() {
			aligned := s.EMA20[i] > s.EMA60[i] && s.SMA20[i] > s.SMA60[i] &&
				(s.EMA60[i] > s.EMA120[i] || s.EMA120[i] > s.SMA120[i])
			narrowFlag = domain.FlagOf(aligned)
		}
		s.ClusterNarrow[i] = narrowFlag
	}
}

// clusterFlag evaluates the convergence ratio for one scale at row i.
func clusterFlag(sc scale, i int) domain.Flag {
	lo, hi, ok := sc.rowExtent(i)
	if !ok {
		return domain.FlagUndefined
	}
	return domain.FlagOf(hi-lo <= hi*clusterThreshold)
}

// setBreakouts fills the breakout flags: clustered and the close sits at the
// top of the scale's band. The comparison is against the same max used for
// the clustering ratio, not a recomputation.
func setBreakouts(s *domain.Series) {
	n := s.Len()
	closes := closeColumn(s)

	wide := scale{cols: [][]float64{closes, s.SMA5, s.SMA10, s.SMA20, s.SMA60, s.SMA120, s.EMA20, s.EMA60, s.EMA120}}
	mid := scale{cols: [][]float64{closes, s.SMA5, s.SMA10, s.SMA20, s.SMA60, s.EMA20, s.EMA60}}
	narrow := scale{cols: [][]float64{closes, s.SMA5, s.SMA10, s.SMA20, s.EMA20}}

	s.BreakoutWide = make([]domain.Flag, n)
	s.BreakoutMid = make([]domain.Flag, n)
	s.BreakoutNarrow = make([]domain.Flag, n)

	for i := 0; i < n; i++ {
		s.BreakoutWide[i] = breakoutFlag(s.ClusterWide[i], wide, closes[i], i)
		s.BreakoutMid[i] = breakoutFlag(s.ClusterMid[i], mid, closes[i], i)
		s.BreakoutNarrow[i] = breakoutFlag(s.ClusterNarrow[i], narrow, closes[i], i)
	}
}

func breakoutFlag(clustered domain.Flag, sc scale, close float64, i int) domain.Flag {
	if !clustered.Defined() {
		return domain.FlagUndefined
	}
	if !clustered.True() {
		return domain.FlagFalse
	}
	_, hi, ok := sc.rowExtent(i)
	if !ok {
		return domain.FlagUndefined
	}
	return domain.FlagOf(close == hi)
}

// setExpansionClogging fills the fan-out and fan-in alignment flags, which
// compare the close against a projection of the closes 20 and 60 rows back.
// Both are undefined until 60 rows of history exist.
func setExpansionClogging(s *domain.Series) {
	n := s.Len()
	closes := closeColumn(s)

	s.Expansion = make([]domain.Flag, n)
	s.Clogging = make([]domain.Flag, n)

	for i := 0; i < n; i++ {
		if i < 60 {
			continue
		}
		projected := closes[i-20]*3 - closes[i-60]

		s.Clogging[i] = domain.FlagOf(closes[i]*0.9*2 < projected)

		breakout := s.BreakoutWide[i]
		if !breakout.Defined() {
			continue
		}
		s.Expansion[i] = domain.FlagOf(breakout.True() && closes[i]*2*1.1 > projected)
	}
}

// rowDefined reports whether every moving-average column is defined at row i.
func rowDefined(s *domain.Series, i int) bool {
	for _, col := range [][]float64{s.SMA5, s.SMA10, s.SMA20, s.SMA60, s.SMA120, s.EMA20, s.EMA60, s.EMA120} {
		if !defined(col[i]) {
			return false
		}
	}
	return true
}

// closeColumn extracts the close prices as a column.
func closeColumn(s *domain.Series) []float64 {
	out := make([]float64, s.Len())
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}
