// Package resample aggregates intraday OHLCV bars into daily bars.
package resample

import (
	"sort"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
	"github.com/TaiwanCCyoyo/Stock/internal/util"
)

// Daily resamples intraday bars into one bar per calendar day:
// open = first open, high = max high, low = min low, close = last close,
// volume = sum of volumes. Bars where any OHLC field is exactly zero are
// excluded before aggregation; a zero price is a data-quality sentinel, not
// a real quote. Days with no surviving bars are dropped, never zero-filled.
//
// Input that is already daily (one bar per calendar day) maps to itself.
// The result is sorted ascending by date.
func Daily(bars []domain.Bar) []domain.Bar {
	clean := make([]domain.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Open == 0 || b.High == 0 || b.Low == 0 || b.Close == 0 {
			continue
		}
		clean = append(clean, b)
	}

	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].Timestamp.Before(clean[j].Timestamp)
	})

	var out []domain.Bar
	for _, b := range clean {
		key := b.DateKey()
		if len(out) > 0 && out[len(out)-1].DateKey() == key {
			agg := &out[len(out)-1]
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Close = b.Close
			agg.Volume += b.Volume
			continue
		}
		day := b
		day.Timestamp = util.Midnight(b.Timestamp)
		out = append(out, day)
	}
	return out
}
