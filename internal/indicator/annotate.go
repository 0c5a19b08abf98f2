package indicator

import "github.com/TaiwanCCyoyo/Stock/internal/domain"

// Annotate derives every indicator column for the series, in dependency
// order. It must be called exactly once per series, on bars that are sorted
// ascending with one bar per trading day; the series is treated as immutable
// afterwards. Re-annotating an already-annotated series is not supported:
// upstream columns are not re-derived.
func Annotate(s *domain.Series) {
	closes := closeColumn(s)

	s.SMA5 = sma(closes, 5)
	s.SMA10 = sma(closes, 10)
	s.SMA20 = sma(closes, 20)
	s.SMA60 = sma(closes, 60)
	s.SMA120 = sma(closes, 120)
	s.EMA20 = ema(closes, 20)
	s.EMA60 = ema(closes, 60)
	s.EMA120 = ema(closes, 120)

	setClusters(s)
	setBreakouts(s)
	setExpansionClogging(s)

	setSwings(s)
	setPrevSwings(s)
	setTrendHigh(s)
}
