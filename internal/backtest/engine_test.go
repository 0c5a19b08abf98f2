package backtest

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
	"github.com/TaiwanCCyoyo/Stock/internal/meta"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustDate(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, key)
	if err != nil {
		t.Fatalf("parse date %q: %v", key, err)
	}
	return d
}

// dailyBars builds consecutive daily bars starting at startKey, one close per
// entry, all sharing the given volume.
func dailyBars(t *testing.T, symbol, startKey string, closes []float64, volume int64) []domain.Bar {
	t.Helper()
	start := mustDate(t, startKey)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    volume,
		}
	}
	return bars
}

func seriesOf(t *testing.T, symbol, startKey string, closes []float64, volume int64) *domain.Series {
	t.Helper()
	return domain.NewSeries(symbol, dailyBars(t, symbol, startKey, closes, volume))
}

// dateRule fires only on the given calendar day.
func dateRule(key string) Rule {
	return func(s *domain.Series, i int) bool {
		return s.Bars[i].DateKey() == key
	}
}

func neverRule(s *domain.Series, i int) bool { return false }

func tableFor(symbols ...string) *meta.Table {
	instruments := make([]meta.Instrument, len(symbols))
	for i, s := range symbols {
		instruments[i] = meta.Instrument{Symbol: s, Name: s, Group: "-", Type: meta.TypeStock}
	}
	return meta.NewTable(instruments)
}

func newEngine(t *testing.T, params Params, buy, sell Rule, table *meta.Table) *Engine {
	t.Helper()
	buyReg := NewRegistry()
	buyReg.Register(params.BuyRule, buy)
	sellReg := NewRegistry()
	sellReg.Register(params.SellRule, sell)

	e, err := New(params, buyReg, sellReg, table, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestRunSingleRoundTrip(t *testing.T) {
	// A at 400 fits the 500,000 budget per trade; B at 600 never does.
	series := map[string]*domain.Series{
		"A": seriesOf(t, "A", "2024-01-02", []float64{400, 400}, 2000),
		"B": seriesOf(t, "B", "2024-01-02", []float64{600, 600}, 2000),
	}

	params := Params{
		StartDate:          mustDate(t, "2024-01-02"),
		InitialAmount:      1_000_000,
		InvestmentPerTrade: 500_000,
		BuyRule:            "buy-day-one",
		SellRule:           "sell-day-two",
	}
	e := newEngine(t, params, dateRule("2024-01-02"), dateRule("2024-01-03"), tableFor("A", "B"))

	res, err := e.Run(series)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.BuyCount != 1 || res.SellCount != 1 {
		t.Errorf("BuyCount=%d SellCount=%d, want 1 and 1", res.BuyCount, res.SellCount)
	}
	// Buy: 1 lot at 400,000, fee 570. Sell at 400,000, fee 1770.
	if res.FinalCash != 997_660 {
		t.Errorf("FinalCash = %d, want 997660", res.FinalCash)
	}
	if res.TotalFees != 2340 {
		t.Errorf("TotalFees = %d, want 2340", res.TotalFees)
	}
	if res.TotalValue != 997_660 || res.HoldingsValue != 0 {
		t.Errorf("TotalValue=%d HoldingsValue=%d", res.TotalValue, res.HoldingsValue)
	}
	if res.WinCount != 0 || res.LoseCount != 1 {
		t.Errorf("WinCount=%d LoseCount=%d, want 0 and 1", res.WinCount, res.LoseCount)
	}
	if res.WinRate != 0 {
		t.Errorf("WinRate = %v, want 0", res.WinRate)
	}

	if len(res.Trades) != 1 {
		t.Fatalf("Trades = %d entries, want 1", len(res.Trades))
	}
	trade := res.Trades[0]
	if trade.Symbol != "A" || trade.Profit != -2340 || trade.Win {
		t.Errorf("trade = %+v, want A with profit -2340", trade)
	}

	want := (float64(997_660)/float64(1_000_000) - 1) * 100
	if res.TotalReturnPct != want {
		t.Errorf("TotalReturnPct = %v, want %v", res.TotalReturnPct, want)
	}
	// One elapsed day scales to a full year.
	if res.AnnualizedPct != want*365 {
		t.Errorf("AnnualizedPct = %v, want %v", res.AnnualizedPct, want*365)
	}

	if len(res.Histories) != 1 || res.Histories[0].Symbol != "A" || res.Histories[0].Profit != -2340 {
		t.Errorf("Histories = %+v", res.Histories)
	}
}

func TestRunRanksByTradedValueAndStopsWhenCashShort(t *testing.T) {
	// All three close at 500; X's volume gives it the largest traded value.
	// After one 500,712 purchase, remaining cash is below the per-trade
	// investment and the buy pass stops.
	series := map[string]*domain.Series{
		"X": seriesOf(t, "X", "2024-01-02", []float64{500, 550}, 3000),
		"Y": seriesOf(t, "Y", "2024-01-02", []float64{500, 550}, 1000),
		"Z": seriesOf(t, "Z", "2024-01-02", []float64{500, 550}, 2000),
	}

	params := Params{
		StartDate:          mustDate(t, "2024-01-02"),
		InitialAmount:      1_000_000,
		InvestmentPerTrade: 500_000,
		BuyRule:            "buy-day-one",
		SellRule:           "never",
	}
	e := newEngine(t, params, dateRule("2024-01-02"), neverRule, tableFor("X", "Y", "Z"))

	res, err := e.Run(series)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.BuyCount != 1 {
		t.Fatalf("BuyCount = %d, want 1", res.BuyCount)
	}
	if len(res.Open) != 1 || res.Open[0].Symbol != "X" {
		t.Fatalf("Open = %+v, want only X", res.Open)
	}

	// Marked to the final close of 550.
	if res.HoldingsValue != 550_000 {
		t.Errorf("HoldingsValue = %d, want 550000", res.HoldingsValue)
	}
	if res.FinalCash != 499_288 {
		t.Errorf("FinalCash = %d, want 499288", res.FinalCash)
	}
	if res.TotalValue != 1_049_288 {
		t.Errorf("TotalValue = %d, want 1049288", res.TotalValue)
	}
	if res.TotalFees != 712 {
		t.Errorf("TotalFees = %d, want 712", res.TotalFees)
	}
	if res.SellCount != 0 || len(res.Trades) != 0 {
		t.Errorf("SellCount=%d Trades=%d, want none", res.SellCount, len(res.Trades))
	}
}

func TestRunUnconstrainedFiltersByVolume(t *testing.T) {
	series := map[string]*domain.Series{
		"A": seriesOf(t, "A", "2024-01-02", []float64{400, 400}, 2000),
		"B": seriesOf(t, "B", "2024-01-02", []float64{400, 400}, 500),
	}

	params := Params{
		StartDate:          mustDate(t, "2024-01-02"),
		InitialAmount:      0,
		InvestmentPerTrade: 500_000,
		MinVolume:          1000,
		BuyRule:            "buy-day-one",
		SellRule:           "never",
	}
	e := newEngine(t, params, dateRule("2024-01-02"), neverRule, tableFor("A", "B"))

	res, err := e.Run(series)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.BuyCount != 1 {
		t.Fatalf("BuyCount = %d, want 1 (B below minimum volume)", res.BuyCount)
	}
	if len(res.Open) != 1 || res.Open[0].Symbol != "A" {
		t.Fatalf("Open = %+v, want only A", res.Open)
	}
	if res.TotalBuyCost != 400_000 {
		t.Errorf("TotalBuyCost = %d, want 400000", res.TotalBuyCost)
	}
	// No initial capital means no return figures.
	if res.TotalReturnPct != 0 || res.AnnualizedPct != 0 {
		t.Errorf("return figures = %v / %v, want zero in unconstrained mode",
			res.TotalReturnPct, res.AnnualizedPct)
	}
}

func TestRunSkipsNonTradingDays(t *testing.T) {
	// A gap between the two bars: the engine walks the missing day without
	// marking, selling, or buying.
	bars := dailyBars(t, "A", "2024-01-02", []float64{400}, 2000)
	bars = append(bars, domain.Bar{
		Symbol:    "A",
		Timestamp: mustDate(t, "2024-01-05"),
		Open:      400, High: 400, Low: 400, Close: 400,
		Volume: 2000,
	})
	series := map[string]*domain.Series{"A": domain.NewSeries("A", bars)}

	params := Params{
		StartDate:          mustDate(t, "2024-01-02"),
		InitialAmount:      1_000_000,
		InvestmentPerTrade: 500_000,
		BuyRule:            "buy-day-one",
		SellRule:           "sell-last-day",
	}
	e := newEngine(t, params, dateRule("2024-01-02"), dateRule("2024-01-05"), tableFor("A"))

	res, err := e.Run(series)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.BuyCount != 1 || res.SellCount != 1 {
		t.Errorf("BuyCount=%d SellCount=%d, want 1 and 1", res.BuyCount, res.SellCount)
	}
	if res.FinalCash != 997_660 {
		t.Errorf("FinalCash = %d, want 997660", res.FinalCash)
	}
}

func TestNewRejectsUnknownRule(t *testing.T) {
	params := Params{
		StartDate:          mustDate(t, "2024-01-02"),
		InitialAmount:      1_000_000,
		InvestmentPerTrade: 500_000,
		BuyRule:            "no-such-rule",
		SellRule:           "low-and-low",
	}
	_, err := New(params, BuyRules(), SellRules(), tableFor("A"), discardLogger())
	if err == nil {
		t.Fatal("New accepted an unknown buy rule")
	}
	if !errors.Is(err, ErrUnknownRule) {
		t.Errorf("New error = %v, want ErrUnknownRule", err)
	}
}

func TestRunRejectsMissingMetadata(t *testing.T) {
	series := map[string]*domain.Series{
		"A": seriesOf(t, "A", "2024-01-02", []float64{400}, 2000),
	}

	params := Params{
		StartDate:          mustDate(t, "2024-01-02"),
		InitialAmount:      1_000_000,
		InvestmentPerTrade: 500_000,
		BuyRule:            "buy-day-one",
		SellRule:           "never",
	}
	e := newEngine(t, params, dateRule("2024-01-02"), neverRule, tableFor("B"))

	_, err := e.Run(series)
	if err == nil {
		t.Fatal("Run accepted an instrument without metadata")
	}
	if !errors.Is(err, meta.ErrMissingMetadata) {
		t.Errorf("Run error = %v, want ErrMissingMetadata", err)
	}
}
