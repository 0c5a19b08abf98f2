// Command process-bars aggregates stored intraday bars into daily bars and
// writes them back to the daily Parquet layout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TaiwanCCyoyo/Stock/internal/config"
	"github.com/TaiwanCCyoyo/Stock/internal/domain"
	"github.com/TaiwanCCyoyo/Stock/internal/resample"
	"github.com/TaiwanCCyoyo/Stock/internal/store"
	"github.com/TaiwanCCyoyo/Stock/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "path to the configuration file")
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols (default: all with intraday data)")
	startFlag := flag.String("start", "2000-01-01", "first date to aggregate (YYYY-MM-DD)")
	flag.Parse()

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

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	start, err := time.Parse(domain.DateLayout, *startFlag)
	if err != nil {
		log.Fatalf("invalid -start date: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, *symbolsFlag, start); err != nil {
		log.Fatalf("process-bars: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, symbolList string, start time.Time) error {
	pstore := store.NewParquetStore(cfg.Storage.DataDir)

	var symbols []string
	if symbolList != "" {
		for _, s := range strings.Split(symbolList, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	} else {
		var err error
		symbols, err = pstore.ListIntradaySymbols(ctx)
		if err != nil {
			return fmt.Errorf("listing intraday symbols: %w", err)
		}
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols with intraday data")
	}

	end := time.Now().UTC()
	workers := cfg.Annotate.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, symbol := range symbols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			intraday, err := pstore.ReadIntradayBars(ctx, symbol, start, end)
			if err != nil {
				return fmt.Errorf("reading intraday bars for %s: %w", symbol, err)
			}
			if len(intraday) == 0 {
				logger.Warn("no intraday bars", "symbol", symbol)
				return nil
			}

			daily := resample.Daily(intraday)
			if err := pstore.WriteDailyBars(ctx, daily); err != nil {
				return fmt.Errorf("writing daily bars for %s: %w", symbol, err)
			}

			logger.Info("aggregated",
				"symbol", symbol,
				"intraday_bars", len(intraday),
				"daily_bars", len(daily),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("done", "symbols", len(symbols))
	return nil
}
