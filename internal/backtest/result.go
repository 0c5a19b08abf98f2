package backtest

import (
	"time"

	"github.com/TaiwanCCyoyo/Stock/internal/ledger"
)

// Result is the summary of one backtest run.
type Result struct {
	StartDate time.Time
	EndDate   time.Time

	InitialAmount int64
	FinalCash     int64
	HoldingsValue int64 // market value of positions still open at run end
	TotalValue    int64 // FinalCash + HoldingsValue

	TotalBuyCost int64 // sum of price x lots across all buys
	TotalFees    int64 // every fee charged, including fees of open positions

	BuyCount  int
	SellCount int
	WinCount  int
	LoseCount int

	// TotalReturnPct and AnnualizedPct are zero in unconstrained mode, where
	// no initial capital exists to measure a return against.
	TotalReturnPct float64
	AnnualizedPct  float64

	// WinRate is win/(win+lose), or zero when no position was closed.
	WinRate float64

	Trades    []ledger.Closed   // closed round-trips in execution order
	Histories []*ledger.History // per-instrument close aggregates, sorted by symbol
	Open      []ledger.Position // positions still held at run end, sorted by symbol
}
