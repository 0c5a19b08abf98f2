package report

import (
	"strings"
	"testing"
	"time"

	"github.com/TaiwanCCyoyo/Stock/internal/backtest"
	"github.com/TaiwanCCyoyo/Stock/internal/ledger"
	"github.com/TaiwanCCyoyo/Stock/internal/meta"
)

func TestFormatInt(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1_000_000, "1,000,000"},
		{997_660, "997,660"},
		{-2340, "-2,340"},
	}
	for _, tc := range cases {
		if got := FormatInt(tc.in); got != tc.want {
			t.Errorf("FormatInt(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(4.9288); got != "+4.93%" {
		t.Errorf("FormatPct = %q", got)
	}
	if got := FormatPct(-0.234); got != "-0.23%" {
		t.Errorf("FormatPct = %q", got)
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(0.5); got != "50.0%" {
		t.Errorf("FormatRate = %q", got)
	}
}

func TestRender(t *testing.T) {
	res := &backtest.Result{
		StartDate:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		InitialAmount: 1_000_000,
		FinalCash:     997_660,
		TotalValue:    997_660,
		BuyCount:      1,
		SellCount:     1,
		LoseCount:     1,
		TotalFees:     2340,
		Histories: []*ledger.History{
			{Symbol: "2330", Cost: 400_000, Profit: -2340, Closes: 1},
		},
	}
	table := meta.NewTable([]meta.Instrument{
		{Symbol: "2330", Name: "台積電", Group: "半導體業", Type: meta.TypeStock},
	})

	out := Render(res, table)

	for _, want := range []string{
		"2024-01-02",
		"1,000,000",
		"997,660",
		"台積電",
		"-2,340",
		"Buys / sells:     1 / 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Open positions") {
		t.Error("Render printed an open-positions section with nothing open")
	}
}

func TestRenderUnconstrained(t *testing.T) {
	res := &backtest.Result{
		StartDate:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		TotalBuyCost: 400_000,
		TotalValue:   400_000,
		BuyCount:     1,
		Open: []ledger.Position{
			{Symbol: "2330", Lots: 1, AvgPrice: 400, Price: 400, Value: 400_000},
		},
	}
	table := meta.NewTable(nil)

	out := Render(res, table)
	if !strings.Contains(out, "Total buy cost") {
		t.Errorf("unconstrained render missing buy cost:\n%s", out)
	}
	if strings.Contains(out, "Total return") {
		t.Error("unconstrained render printed a return figure")
	}
	if !strings.Contains(out, "Open positions") {
		t.Error("Render missing the open-positions section")
	}
}
