// Package domain defines the core data types shared across the system:
// OHLCV bars, the annotated per-instrument series produced by the indicator
// pipeline, and the tri-state flag type used for derived pattern columns.
package domain

import (
	"time"
)

// DateLayout is the canonical calendar-day key format used to index series
// rows and to record swing-point back-references.
const DateLayout = "2006-01-02"

// Bar is a single OHLCV bar for one instrument. Intraday bars carry a full
// timestamp; daily bars carry the calendar day at midnight UTC.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// DateKey returns the calendar-day key for the bar.
func (b Bar) DateKey() string {
	return b.Timestamp.Format(DateLayout)
}

// Flag is a tri-state boolean for derived indicator columns. A column that
// cannot be evaluated for a row (insufficient history upstream) stays
// FlagUndefined rather than collapsing to false.
type Flag int8

// Flag states.
const (
	FlagUndefined Flag = iota
	FlagFalse
	FlagTrue
)

// True reports whether the flag is defined and set.
func (f Flag) True() bool { return f == FlagTrue }

// Defined reports whether the flag has been evaluated.
func (f Flag) Defined() bool { return f != FlagUndefined }

// FlagOf converts a plain boolean into a defined Flag.
func FlagOf(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// Series is an ordered daily bar sequence for one instrument, extended with
// the indicator columns derived by the indicator package. Float columns use
// NaN for rows where the value is undefined; flag columns use FlagUndefined.
// A Series is annotated exactly once and treated as immutable afterwards.
type Series struct {
	Symbol string
	Bars   []Bar

	// Moving averages over Close.
	SMA5   []float64
	SMA10  []float64
	SMA20  []float64
	SMA60  []float64
	SMA120 []float64
	EMA20  []float64
	EMA60  []float64
	EMA120 []float64

	// Clustering and breakout flags at the three band scales.
	ClusterWide    []Flag
	ClusterMid     []Flag
	ClusterNarrow  []Flag
	BreakoutWide   []Flag
	BreakoutMid    []Flag
	BreakoutNarrow []Flag

	// Fan-out / fan-in alignment of the short closes after a breakout.
	Expansion []Flag
	Clogging  []Flag

	// Structural pivots over a centered window.
	SwingHigh []bool
	SwingLow  []bool

	// Most recent swing point strictly before each row. PrevHighDate and
	// PrevLowDate are weak back-references by date key into the same series;
	// the Has* columns are the explicit presence guards.
	PrevHigh     []float64
	PrevHighDate []string
	HasPrevHigh  []bool
	PrevLow      []float64
	PrevLowDate  []string
	HasPrevLow   []bool

	// Pattern flags derived from the previous swing points.
	CrossedPrevHigh []bool
	BrokePrevLow    []bool

	// Projected resistance from the line through the two most recent swing
	// highs. NaN before the second swing high has been observed.
	TrendHigh []float64

	byDate map[string]int
}

// NewSeries creates a Series over the given daily bars, which must be sorted
// ascending by date with one bar per calendar day.
func NewSeries(symbol string, bars []Bar) *Series {
	s := &Series{
		Symbol: symbol,
		Bars:   bars,
		byDate: make(map[string]int, len(bars)),
	}
	for i, b := range bars {
		s.byDate[b.DateKey()] = i
	}
	return s
}

// Len returns the number of daily rows in the series.
func (s *Series) Len() int { return len(s.Bars) }

// Index resolves a calendar-day key to a row offset. The second return value
// reports whether the instrument traded on that day.
func (s *Series) Index(dateKey string) (int, bool) {
	i, ok := s.byDate[dateKey]
	return i, ok
}

// LastDate returns the date of the final row, or the zero time for an empty
// series.
func (s *Series) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Timestamp
}
