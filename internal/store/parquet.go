package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
)

// Compile-time interface check.
var _ BarStore = (*ParquetStore)(nil)

// market is the single exchange this data set covers.
const market = "tw"

// ParquetStore implements BarStore using Parquet files on disk, one file per
// symbol and year:
//
//	<DataDir>/tw/daily/<SYMBOL>/<YYYY>.parquet
//	<DataDir>/tw/intraday/<SYMBOL>/<YYYY>.parquet
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// BarRecord is the Parquet schema for bar data.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// WriteDailyBars writes daily bars grouped by symbol and year, merging with
// any records already on disk.
func (s *ParquetStore) WriteDailyBars(_ context.Context, bars []domain.Bar) error {
	return s.writeBars(bars, "daily")
}

// ReadDailyBars reads daily bars for the given symbol and time range.
func (s *ParquetStore) ReadDailyBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	return s.readBars(symbol, "daily", start, end)
}

// WriteIntradayBars writes intraday bars grouped by symbol and year, merging
// with any records already on disk.
func (s *ParquetStore) WriteIntradayBars(_ context.Context, bars []domain.Bar) error {
	return s.writeBars(bars, "intraday")
}

// ReadIntradayBars reads intraday bars for the given symbol and time range.
func (s *ParquetStore) ReadIntradayBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	return s.readBars(symbol, "intraday", start, end)
}

// ListSymbols lists all symbols that have daily bar data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	return s.listSymbols("daily")
}

// ListIntradaySymbols lists all symbols that have intraday bar data.
func (s *ParquetStore) ListIntradaySymbols(_ context.Context) ([]string, error) {
	return s.listSymbols("intraday")
}

func (s *ParquetStore) listSymbols(resolution string) ([]string, error) {
	dir := filepath.Join(s.DataDir, market, resolution)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *ParquetStore) writeBars(bars []domain.Bar, resolution string) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		k := key{symbol: b.Symbol, year: b.Timestamp.Year()}
		groups[k] = append(groups[k], BarRecord{
			Symbol:    b.Symbol,
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.symbol, resolution, k.year)

		// Merge with existing records; re-ingesting a day overwrites it.
		existing, _ := readParquetFile[BarRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing %s bars for %s/%d: %w", resolution, k.symbol, k.year, err)
		}
	}
	return nil
}

func (s *ParquetStore) readBars(symbol, resolution string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	for year := start.Year(); year <= end.Year(); year++ {
		path := s.barPath(symbol, resolution, year)

		records, err := readParquetFile[BarRecord](path)
		if err != nil {
			// No file for this year.
			continue
		}

		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if ts.Before(start) || ts.After(end) {
				continue
			}
			bars = append(bars, domain.Bar{
				Symbol:    r.Symbol,
				Timestamp: ts,
				Open:      r.Open,
				High:      r.High,
				Low:       r.Low,
				Close:     r.Close,
				Volume:    r.Volume,
			})
		}
	}
	return bars, nil
}

// barPath returns the filesystem path for a bar Parquet file.
func (s *ParquetStore) barPath(symbol, resolution string, year int) string {
	return filepath.Join(s.DataDir, market, resolution, symbol, fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates records by (symbol, timestamp), preferring
// incoming records over existing ones. Results are sorted by timestamp.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
