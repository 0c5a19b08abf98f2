package report

import (
	"fmt"
	"strings"
)

// FormatInt formats an integer currency amount with comma separators.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPct formats a percentage with a sign, e.g. "+4.93%".
func FormatPct(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}

// FormatRate formats a 0..1 ratio as a percentage without a sign.
func FormatRate(r float64) string {
	return fmt.Sprintf("%.1f%%", r*100)
}

// FormatPrice formats a display price, trimming to two decimals.
func FormatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}
