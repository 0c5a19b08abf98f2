package util

import "time"

// Days returns every calendar day from start to end inclusive, normalized to
// midnight UTC. The backtest cursor walks this list; non-trading days are
// skipped naturally because no instrument has a bar for them.
func Days(start, end time.Time) []time.Time {
	start = Midnight(start)
	end = Midnight(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Midnight truncates t to the calendar day at midnight UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(Midnight(end).Sub(Midnight(start)).Hours() / 24)
}
