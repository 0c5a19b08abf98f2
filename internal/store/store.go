// Package store persists and retrieves bar data and backtest run records:
// bars live in Parquet files on disk, run summaries in SQLite.
package store

import (
	"context"
	"time"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
	"github.com/TaiwanCCyoyo/Stock/internal/ledger"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteDailyBars persists a batch of daily bars.
	WriteDailyBars(ctx context.Context, bars []domain.Bar) error

	// ReadDailyBars returns the daily bars for a symbol within [start, end].
	ReadDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// WriteIntradayBars persists a batch of intraday bars.
	WriteIntradayBars(ctx context.Context, bars []domain.Bar) error

	// ReadIntradayBars returns the intraday bars for a symbol within [start, end].
	ReadIntradayBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with daily bar data.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunRecord is one persisted backtest run summary.
type RunRecord struct {
	ID            int64
	CreatedAt     time.Time
	StartDate     string
	EndDate       string
	BuyRule       string
	SellRule      string
	InitialAmount int64
	Investment    int64
	TotalValue    int64
	TotalBuyCost  int64
	ReturnPct     float64
	AnnualizedPct float64
	WinRate       float64
	BuyCount      int
	SellCount     int
	TotalFees     int64
}

// RunStore persists and retrieves backtest run records.
type RunStore interface {
	// SaveRun inserts a run summary and its closed trades, returning the
	// assigned run ID.
	SaveRun(ctx context.Context, run RunRecord, trades []ledger.Closed) (int64, error)

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// ListTrades returns the closed trades of one run in insertion order.
	ListTrades(ctx context.Context, runID int64) ([]ledger.Closed, error)
}
