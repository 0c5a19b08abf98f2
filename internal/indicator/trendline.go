package indicator

import "github.com/TaiwanCCyoyo/Stock/internal/domain"

// setTrendHigh projects a resistance line through the two most recent swing
// highs. Once two swing highs have been observed, every subsequent row gets
// value = lastSwingHigh + slope * (offset - lastSwingHighOffset), where the
// slope is taken between the two most recent swing highs. Rows before the
// second swing high stay undefined.
func setTrendHigh(s *domain.Series) {
	n := s.Len()
	s.TrendHigh = nanColumn(n)

	var (
		lastHigh   float64 // most recent swing-high value
		rise       float64 // lastHigh minus the swing high before it
		lastOffset int     // row offset of the most recent swing high
		run        int     // offset distance between the two swing highs
		seen       int     // swing highs observed so far
	)

	for i := 1; i < n; i++ {
		if s.SwingHigh[i] {
			rise = s.Bars[i].High - lastHigh
			run = i - lastOffset
			lastHigh = s.Bars[i].High
			lastOffset = i
			seen++
		}
		if seen >= 2 {
			s.TrendHigh[i] = lastHigh + rise/float64(run)*float64(i-lastOffset)
		}
	}
}
