package domain

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBarDateKey(t *testing.T) {
	b := Bar{Symbol: "2330", Timestamp: time.Date(2023, 6, 15, 13, 30, 0, 0, time.UTC)}
	if got := b.DateKey(); got != "2023-06-15" {
		t.Errorf("DateKey() = %q, want %q", got, "2023-06-15")
	}
}

func TestFlagStates(t *testing.T) {
	var f Flag
	if f.Defined() {
		t.Error("zero-value Flag should be undefined")
	}
	if f.True() {
		t.Error("undefined Flag should not report true")
	}
	if !FlagOf(true).True() {
		t.Error("FlagOf(true).True() = false")
	}
	if FlagOf(false).True() {
		t.Error("FlagOf(false).True() = true")
	}
	if !FlagOf(false).Defined() {
		t.Error("FlagOf(false) should be defined")
	}
}

func TestSeriesIndex(t *testing.T) {
	bars := []Bar{
		{Symbol: "2330", Timestamp: day(2023, 1, 3), Close: 450},
		{Symbol: "2330", Timestamp: day(2023, 1, 4), Close: 452},
		{Symbol: "2330", Timestamp: day(2023, 1, 6), Close: 448},
	}
	s := NewSeries("2330", bars)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	i, ok := s.Index("2023-01-04")
	if !ok || i != 1 {
		t.Errorf("Index(2023-01-04) = (%d, %v), want (1, true)", i, ok)
	}

	// 2023-01-05 has no bar: the instrument did not trade that day.
	if _, ok := s.Index("2023-01-05"); ok {
		t.Error("Index returned ok for a non-trading day")
	}

	if got := s.LastDate(); !got.Equal(day(2023, 1, 6)) {
		t.Errorf("LastDate() = %v, want %v", got, day(2023, 1, 6))
	}
}

func TestSeriesLastDateEmpty(t *testing.T) {
	s := NewSeries("2330", nil)
	if !s.LastDate().IsZero() {
		t.Error("LastDate() of empty series should be the zero time")
	}
}
