package util

import (
	"testing"
	"time"
)

func TestDaysInclusive(t *testing.T) {
	start := time.Date(2023, 3, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 4, 2, 0, 0, 0, 0, time.UTC)

	days := Days(start, end)
	if len(days) != 4 {
		t.Fatalf("Days returned %d days, want 4", len(days))
	}
	if !days[0].Equal(start) {
		t.Errorf("first day = %v, want %v", days[0], start)
	}
	if !days[3].Equal(end) {
		t.Errorf("last day = %v, want %v", days[3], end)
	}
}

func TestDaysSingle(t *testing.T) {
	d := time.Date(2023, 3, 30, 0, 0, 0, 0, time.UTC)
	days := Days(d, d)
	if len(days) != 1 {
		t.Fatalf("Days returned %d days, want 1", len(days))
	}
}

func TestMidnightDropsClock(t *testing.T) {
	ts := time.Date(2023, 3, 30, 13, 24, 59, 0, time.UTC)
	want := time.Date(2023, 3, 30, 0, 0, 0, 0, time.UTC)
	if got := Midnight(ts); !got.Equal(want) {
		t.Errorf("Midnight = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(start, end); got != 365 {
		t.Errorf("DaysBetween = %d, want 365", got)
	}
}

func TestNewLogger(t *testing.T) {
	if l := NewLogger("debug", "json"); l == nil {
		t.Fatal("NewLogger returned nil")
	}
	if l := NewLogger("bogus", "text"); l == nil {
		t.Fatal("NewLogger with unknown level returned nil")
	}
}
