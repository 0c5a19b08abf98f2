package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/TaiwanCCyoyo/Stock/internal/ledger"
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at     TEXT NOT NULL,
	start_date     TEXT NOT NULL,
	end_date       TEXT NOT NULL,
	buy_rule       TEXT NOT NULL,
	sell_rule      TEXT NOT NULL,
	initial_amount INTEGER NOT NULL,
	investment     INTEGER NOT NULL,
	total_value    INTEGER NOT NULL,
	total_buy_cost INTEGER NOT NULL,
	return_pct     REAL NOT NULL,
	annualized_pct REAL NOT NULL,
	win_rate       REAL NOT NULL,
	buy_count      INTEGER NOT NULL,
	sell_count     INTEGER NOT NULL,
	total_fees     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id   INTEGER NOT NULL REFERENCES runs(id),
	symbol   TEXT NOT NULL,
	lots     INTEGER NOT NULL,
	value    INTEGER NOT NULL,
	cost     INTEGER NOT NULL,
	fee      INTEGER NOT NULL,
	sell_fee INTEGER NOT NULL,
	profit   INTEGER NOT NULL,
	win      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
`

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run summary and its closed trades in one transaction and
// returns the assigned run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord, trades []ledger.Closed) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			created_at, start_date, end_date, buy_rule, sell_rule,
			initial_amount, investment, total_value, total_buy_cost,
			return_pct, annualized_pct, win_rate,
			buy_count, sell_count, total_fees
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339),
		run.StartDate, run.EndDate, run.BuyRule, run.SellRule,
		run.InitialAmount, run.Investment, run.TotalValue, run.TotalBuyCost,
		run.ReturnPct, run.AnnualizedPct, run.WinRate,
		run.BuyCount, run.SellCount, run.TotalFees,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, t := range trades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trades (run_id, symbol, lots, value, cost, fee, sell_fee, profit, win)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, t.Symbol, t.Lots, t.Value, t.Cost, t.Fee, t.SellFee, t.Profit, t.Win,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting trade %s: %w", t.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, start_date, end_date, buy_rule, sell_rule,
			initial_amount, investment, total_value, total_buy_cost,
			return_pct, annualized_pct, win_rate,
			buy_count, sell_count, total_fees
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var createdAt string
		err := rows.Scan(
			&r.ID, &createdAt, &r.StartDate, &r.EndDate, &r.BuyRule, &r.SellRule,
			&r.InitialAmount, &r.Investment, &r.TotalValue, &r.TotalBuyCost,
			&r.ReturnPct, &r.AnnualizedPct, &r.WinRate,
			&r.BuyCount, &r.SellCount, &r.TotalFees,
		)
		if err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListTrades returns the closed trades of one run in insertion order.
func (s *SQLiteStore) ListTrades(ctx context.Context, runID int64) ([]ledger.Closed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, lots, value, cost, fee, sell_fee, profit, win
		FROM trades WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []ledger.Closed
	for rows.Next() {
		var t ledger.Closed
		err := rows.Scan(&t.Symbol, &t.Lots, &t.Value, &t.Cost, &t.Fee, &t.SellFee, &t.Profit, &t.Win)
		if err != nil {
			return nil, err
		}
		t.Proceeds = t.Value - t.SellFee
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
