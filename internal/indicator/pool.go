package indicator

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
)

// AnnotateAll builds and annotates one series per instrument in parallel.
// Each worker owns a single instrument's bars end-to-end, so there is no
// shared mutable state beyond the result map, and results are collected by
// symbol. maxWorkers <= 0 uses one worker per CPU.
func AnnotateAll(ctx context.Context, bars map[string][]domain.Bar, maxWorkers int) (map[string]*domain.Series, error) {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	var mu sync.Mutex
	out := make(map[string]*domain.Series, len(bars))

	for symbol, seriesBars := range bars {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := domain.NewSeries(symbol, seriesBars)
			Annotate(s)

			mu.Lock()
			out[symbol] = s
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
