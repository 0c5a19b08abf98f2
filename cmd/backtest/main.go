// Command backtest replays the configured buy/sell rules over the stored
// daily bars, prints the run summary, and records it in SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TaiwanCCyoyo/Stock/internal/backtest"
	"github.com/TaiwanCCyoyo/Stock/internal/config"
	"github.com/TaiwanCCyoyo/Stock/internal/domain"
	"github.com/TaiwanCCyoyo/Stock/internal/indicator"
	"github.com/TaiwanCCyoyo/Stock/internal/meta"
	"github.com/TaiwanCCyoyo/Stock/internal/report"
	"github.com/TaiwanCCyoyo/Stock/internal/store"
	"github.com/TaiwanCCyoyo/Stock/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "path to the configuration file")
	startFlag := flag.String("start", "", "override backtest start date (YYYY-MM-DD)")
	buyFlag := flag.String("buy", "", "override the buy rule")
	sellFlag := flag.String("sell", "", "override the sell rule")
	listRules := flag.Bool("list-rules", false, "print the available rules and exit")
	flag.Parse()

	if *listRules {
		fmt.Println("buy rules: ", backtest.BuyRules().List())
		fmt.Println("sell rules:", backtest.SellRules().List())
		return
	}

	cfgPath := "config/stock.yaml"
	if p := os.Getenv("STOCK_CONFIG"); p != "" {
		cfgPath = p
	}
	if *cfgFlag != "" {
		cfgPath = *cfgFlag
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *startFlag != "" {
		cfg.Backtest.StartDate = *startFlag
	}
	if *buyFlag != "" {
		cfg.Backtest.BuyRule = *buyFlag
	}
	if *sellFlag != "" {
		cfg.Backtest.SellRule = *sellFlag
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("backtest: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	start, err := time.Parse(domain.DateLayout, cfg.Backtest.StartDate)
	if err != nil {
		return fmt.Errorf("backtest.start_date: %w", err)
	}

	table, err := meta.Load(cfg.Storage.MetadataPath)
	if err != nil {
		return fmt.Errorf("loading instrument metadata: %w", err)
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	all, err := pstore.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("listing symbols: %w", err)
	}
	universe := table.Universe(all, cfg.Backtest.Groups)
	if len(universe) == 0 {
		return fmt.Errorf("no instruments in the configured universe")
	}
	logger.Info("universe resolved", "stored", len(all), "selected", len(universe))

	// Read everything on disk per symbol: the long moving averages need the
	// full history preceding the start date.
	now := time.Now().UTC()
	bars := make(map[string][]domain.Bar, len(universe))
	for _, symbol := range universe {
		b, err := pstore.ReadDailyBars(ctx, symbol, time.Unix(0, 0).UTC(), now)
		if err != nil {
			return fmt.Errorf("reading bars for %s: %w", symbol, err)
		}
		if len(b) == 0 {
			continue
		}
		bars[symbol] = b
	}

	series, err := indicator.AnnotateAll(ctx, bars, cfg.Annotate.MaxWorkers)
	if err != nil {
		return fmt.Errorf("deriving indicators: %w", err)
	}
	logger.Info("indicators derived", "instruments", len(series))

	params := backtest.Params{
		StartDate:          start,
		InitialAmount:      cfg.Backtest.InitialAmount,
		InvestmentPerTrade: cfg.Backtest.InvestmentPerTrade,
		MinVolume:          cfg.Backtest.MinVolume,
		BuyRule:            cfg.Backtest.BuyRule,
		SellRule:           cfg.Backtest.SellRule,
	}
	engine, err := backtest.New(params, backtest.BuyRules(), backtest.SellRules(), table, logger)
	if err != nil {
		return err
	}

	res, err := engine.Run(series)
	if err != nil {
		return err
	}

	fmt.Print(report.Render(res, table))

	if cfg.Storage.SQLitePath == "" {
		return nil
	}
	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, store.RunRecord{
		StartDate:     res.StartDate.Format(domain.DateLayout),
		EndDate:       res.EndDate.Format(domain.DateLayout),
		BuyRule:       params.BuyRule,
		SellRule:      params.SellRule,
		InitialAmount: res.InitialAmount,
		Investment:    params.InvestmentPerTrade,
		TotalValue:    res.TotalValue,
		TotalBuyCost:  res.TotalBuyCost,
		ReturnPct:     res.TotalReturnPct,
		AnnualizedPct: res.AnnualizedPct,
		WinRate:       res.WinRate,
		BuyCount:      res.BuyCount,
		SellCount:     res.SellCount,
		TotalFees:     res.TotalFees,
	}, res.Trades)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	logger.Info("run saved", "run_id", runID, "trades", len(res.Trades))
	return nil
}
