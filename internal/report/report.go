// Package report renders a backtest result as a plain-text summary for the
// terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/TaiwanCCyoyo/Stock/internal/backtest"
	"github.com/TaiwanCCyoyo/Stock/internal/domain"
	"github.com/TaiwanCCyoyo/Stock/internal/meta"
)

// Render formats the run summary, the per-instrument history, and any
// positions still open at the end of the run.
func Render(res *backtest.Result, table *meta.Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Backtest %s to %s\n",
		res.StartDate.Format(domain.DateLayout), res.EndDate.Format(domain.DateLayout))
	b.WriteString(strings.Repeat("-", 60) + "\n")

	if res.InitialAmount > 0 {
		fmt.Fprintf(&b, "Initial amount:   %s\n", FormatInt(res.InitialAmount))
		fmt.Fprintf(&b, "Final value:      %s (cash %s + holdings %s)\n",
			FormatInt(res.TotalValue), FormatInt(res.FinalCash), FormatInt(res.HoldingsValue))
		fmt.Fprintf(&b, "Total return:     %s\n", FormatPct(res.TotalReturnPct))
		fmt.Fprintf(&b, "Annualized:       %s\n", FormatPct(res.AnnualizedPct))
	} else {
		fmt.Fprintf(&b, "Total buy cost:   %s\n", FormatInt(res.TotalBuyCost))
		fmt.Fprintf(&b, "Final value:      %s\n", FormatInt(res.TotalValue))
	}

	fmt.Fprintf(&b, "Buys / sells:     %d / %d\n", res.BuyCount, res.SellCount)
	fmt.Fprintf(&b, "Wins / losses:    %d / %d", res.WinCount, res.LoseCount)
	if res.WinCount+res.LoseCount > 0 {
		fmt.Fprintf(&b, "  (win rate %s)", FormatRate(res.WinRate))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total fees:       %s\n", FormatInt(res.TotalFees))

	if len(res.Histories) > 0 {
		b.WriteString("\nClosed round-trips by instrument:\n")
		for _, h := range res.Histories {
			fmt.Fprintf(&b, "  %-8s %-12s closes %-3d cost %-14s profit %s\n",
				h.Symbol, table.Name(h.Symbol), h.Closes, FormatInt(h.Cost), FormatInt(h.Profit))
		}
	}

	if len(res.Open) > 0 {
		b.WriteString("\nOpen positions:\n")
		for _, p := range res.Open {
			fmt.Fprintf(&b, "  %-8s %-12s lots %-4d avg %-10s now %-10s value %s\n",
				p.Symbol, table.Name(p.Symbol), p.Lots,
				FormatPrice(p.AvgPrice), FormatPrice(p.Price), FormatInt(p.Value))
		}
	}

	return b.String()
}
