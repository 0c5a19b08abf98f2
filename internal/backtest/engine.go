package backtest

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
	"github.com/TaiwanCCyoyo/Stock/internal/ledger"
	"github.com/TaiwanCCyoyo/Stock/internal/meta"
	"github.com/TaiwanCCyoyo/Stock/internal/util"
)

// Params configures one backtest run. InitialAmount zero selects
// unconstrained mode: every qualifying candidate is bought regardless of
// cash, and MinVolume suppresses illiquid names that a cash-constrained run
// would avoid through budget exhaustion.
type Params struct {
	StartDate          time.Time
	InitialAmount      int64
	InvestmentPerTrade int64
	MinVolume          int64
	BuyRule            string
	SellRule           string
}

// Engine owns the state of one sequential backtest: the date cursor, the
// position ledger, and the trade counters. It is strictly single-threaded;
// the day-by-day walk has a hard ordering dependency and within a day the
// sell pass must complete before the buy pass reads the cash balance.
type Engine struct {
	params Params
	buy    Rule
	sell   Rule
	meta   *meta.Table
	log    *slog.Logger
}

// New resolves the configured rule names against the given registries and
// returns a ready engine. An unrecognized rule name is fatal.
func New(params Params, buyRules, sellRules *Registry, table *meta.Table, log *slog.Logger) (*Engine, error) {
	if params.InvestmentPerTrade <= 0 {
		return nil, errors.New("investment per trade must be positive")
	}

	buy, err := buyRules.Lookup(params.BuyRule)
	if err != nil {
		return nil, fmt.Errorf("buy rule: %w", err)
	}
	sell, err := sellRules.Lookup(params.SellRule)
	if err != nil {
		return nil, fmt.Errorf("sell rule: %w", err)
	}

	return &Engine{
		params: params,
		buy:    buy,
		sell:   sell,
		meta:   table,
		log:    log,
	}, nil
}

// candidate is one instrument passing the buy rule on a given day.
type candidate struct {
	symbol  string
	volume  int64
	perUnit int64
}

// Run walks the calendar from the start date to the last date present in
// any series, evaluating sells before buys each day, and returns the run
// summary. The series map is read-only; the ledger and counters live and
// die with this call.
func (e *Engine) Run(series map[string]*domain.Series) (*Result, error) {
	symbols := make([]string, 0, len(series))
	for symbol := range series {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	if err := e.meta.Validate(symbols); err != nil {
		return nil, err
	}

	end := e.params.StartDate
	for _, symbol := range symbols {
		if last := series[symbol].LastDate(); last.After(end) {
			end = last
		}
	}

	unconstrained := e.params.InitialAmount == 0
	invest := e.params.InvestmentPerTrade

	led := ledger.New()
	cash := e.params.InitialAmount
	res := &Result{
		StartDate:     util.Midnight(e.params.StartDate),
		EndDate:       util.Midnight(end),
		InitialAmount: e.params.InitialAmount,
	}

	for _, day := range util.Days(e.params.StartDate, end) {
		key := day.Format(domain.DateLayout)

		// Mark-to-market every held instrument trading today. This must
		// precede the sell pass so closes realize today's price.
		held := led.Symbols()
		sort.Strings(held)
		for _, symbol := range held {
			s := series[symbol]
			if i, ok := s.Index(key); ok {
				close := s.Bars[i].Close
				led.Mark(symbol, ledger.PerUnit(close), close)
			}
		}

		// Sell pass.
		for _, symbol := range held {
			s := series[symbol]
			i, ok := s.Index(key)
			if !ok || !e.sell(s, i) {
				continue
			}
			p, _ := led.Position(symbol)
			c, _ := led.Close(symbol, ledger.SellFee(p.Value))

			cash += c.Proceeds
			res.SellCount++
			res.TotalFees += c.SellFee
			if c.Win {
				res.WinCount++
			} else {
				res.LoseCount++
			}
			res.Trades = append(res.Trades, c)

			e.log.Info("sell",
				"date", key,
				"symbol", symbol,
				"name", e.meta.Name(symbol),
				"lots", c.Lots,
				"value", c.Value,
				"profit", c.Profit,
				"fee", c.Fee,
				"cash", cash,
			)
		}

		// Candidate selection over every instrument trading today, held or
		// not. In cash-constrained mode the whole day is skipped once cash
		// cannot fund another full purchase.
		var candidates []candidate
		if unconstrained || cash >= invest {
			for _, symbol := range symbols {
				s := series[symbol]
				i, ok := s.Index(key)
				if !ok {
					continue
				}
				bar := s.Bars[i]
				perUnit := ledger.PerUnit(bar.Close)
				if perUnit <= 0 || perUnit > invest {
					continue
				}
				if unconstrained && bar.Volume < e.params.MinVolume {
					continue
				}
				if e.buy(s, i) {
					candidates = append(candidates, candidate{
						symbol:  symbol,
						volume:  bar.Volume,
						perUnit: perUnit,
					})
				}
			}
		}

		// Rank by traded value, largest first; ties keep input order.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].volume*candidates[i].perUnit > candidates[j].volume*candidates[j].perUnit
		})

		// Buy pass.
		for _, c := range candidates {
			if !unconstrained && cash < invest {
				break
			}
			lots := invest / c.perUnit
			fee := ledger.BuyFee(c.perUnit, lots)
			cost := c.perUnit * lots

			led.OpenOrAdd(c.symbol, c.perUnit, lots, fee)
			cash -= cost + fee
			res.BuyCount++
			res.TotalBuyCost += cost
			res.TotalFees += fee

			e.log.Info("buy",
				"date", key,
				"symbol", c.symbol,
				"name", e.meta.Name(c.symbol),
				"lots", lots,
				"per_unit", c.perUnit,
				"cost", cost,
				"fee", fee,
				"cash", cash,
			)
		}
	}

	e.finalize(res, led, cash)
	return res, nil
}

// finalize marks the terminal state: open positions at their last known
// price, portfolio totals, and the derived return and win-rate figures.
func (e *Engine) finalize(res *Result, led *ledger.Ledger, cash int64) {
	open := led.Symbols()
	sort.Strings(open)
	for _, symbol := range open {
		p, _ := led.Position(symbol)
		res.Open = append(res.Open, *p)
	}

	res.FinalCash = cash
	res.HoldingsValue = led.TotalValue()
	res.TotalValue = cash + res.HoldingsValue

	if res.InitialAmount > 0 {
		res.TotalReturnPct = (float64(res.TotalValue)/float64(res.InitialAmount) - 1) * 100
		if days := util.DaysBetween(res.StartDate, res.EndDate); days > 0 {
			res.AnnualizedPct = res.TotalReturnPct / float64(days) * 365
		}
	}

	if closed := res.WinCount + res.LoseCount; closed > 0 {
		res.WinRate = float64(res.WinCount) / float64(closed)
	}

	histories := led.Histories()
	sort.Slice(histories, func(i, j int) bool { return histories[i].Symbol < histories[j].Symbol })
	res.Histories = histories
}
