// Package ledger tracks per-instrument holdings, cost basis, fees, and
// realized profit for a single backtest run.
//
// Prices are carried per unit: one lot is 1000 shares, so the per-unit price
// is the display price times 1000, rounded to an integer. Cost, market
// value, and fees are integer currency amounts throughout.
package ledger

// Fee schedule in parts per million of traded value, applied with floor
// rounding: buy 0.1425%, sell 0.4425% (commission plus transaction tax).
const (
	buyFeePPM  = 1425
	sellFeePPM = 4425
)

// PerUnit converts a display price into the integer price of one lot.
func PerUnit(price float64) int64 {
	return int64(price * 1000)
}

// BuyFee returns the fee for buying lots at perUnit, rounded down.
func BuyFee(perUnit, lots int64) int64 {
	return perUnit * lots * buyFeePPM / 1_000_000
}

// SellFee returns the fee for selling a holding worth value, rounded down.
func SellFee(value int64) int64 {
	return value * sellFeePPM / 1_000_000
}

// Position is an open holding in one instrument.
type Position struct {
	Symbol     string
	Lots       int64   // unit = 1000 shares
	Cost       int64   // cumulative purchase cost
	Fee        int64   // cumulative fees charged so far
	PerUnit    int64   // current price of one lot
	Price      float64 // current display price
	Value      int64   // market value at the current price
	AvgPerUnit float64 // weighted-average purchase price of one lot
	AvgPrice   float64 // weighted-average display purchase price
}

// History accumulates the closed round-trips of one instrument. It is never
// removed within a run.
type History struct {
	Symbol string
	Cost   int64 // cumulative cost across closed round-trips
	Profit int64 // cumulative realized profit
	Closes int   // number of closes
}

// Closed reports the outcome of closing a position.
type Closed struct {
	Symbol   string
	Lots     int64
	Value    int64 // market value at the close
	Cost     int64 // purchase cost
	Fee      int64 // all fees, including the sell fee
	SellFee  int64
	Proceeds int64 // value minus the sell fee, credited back to cash
	Profit   int64 // value - cost - fee
	Win      bool  // profit strictly positive
}

// Ledger is the exclusive position and trade-history state of one backtest
// run. It is not safe for concurrent use; each run owns its own instance.
type Ledger struct {
	positions map[string]*Position
	history   map[string]*History
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		positions: make(map[string]*Position),
		history:   make(map[string]*History),
	}
}

// OpenOrAdd opens a position, or adds lots to an existing one recomputing
// the weighted-average purchase price. An add revalues the position at its
// previous mark price; the market value is refreshed separately by Mark.
func (l *Ledger) OpenOrAdd(symbol string, perUnit, lots, fee int64) {
	p, ok := l.positions[symbol]
	if !ok {
		p = &Position{
			Symbol:     symbol,
			Lots:       lots,
			Cost:       perUnit * lots,
			Fee:        fee,
			PerUnit:    perUnit,
			Price:      float64(perUnit) / 1000,
			Value:      perUnit * lots,
			AvgPerUnit: float64(perUnit),
			AvgPrice:   float64(perUnit) / 1000,
		}
		l.positions[symbol] = p
		return
	}

	p.Cost += perUnit * lots
	p.Lots += lots
	p.Fee += fee
	p.AvgPerUnit = float64(p.Cost) / float64(p.Lots)
	p.AvgPrice = p.AvgPerUnit / 1000
	p.Value = p.PerUnit * p.Lots
}

// Mark refreshes the current price and market value of a held position. It
// is a no-op for instruments that are not held; a mark never fabricates a
// position.
func (l *Ledger) Mark(symbol string, perUnit int64, price float64) {
	p, ok := l.positions[symbol]
	if !ok {
		return
	}
	p.PerUnit = perUnit
	p.Price = price
	p.Value = perUnit * p.Lots
}

// Close realizes the position at its current mark: profit is the market
// value minus cost and all fees, where sellFee (normally SellFee of the
// marked value) is charged on top of the accumulated buy fees. The outcome
// is folded into the instrument's History and the position is removed. The
// second return value is false, with no state change, when the instrument
// is not held.
func (l *Ledger) Close(symbol string, sellFee int64) (Closed, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return Closed{}, false
	}

	totalFee := p.Fee + sellFee
	profit := p.Value - p.Cost - totalFee

	c := Closed{
		Symbol:   symbol,
		Lots:     p.Lots,
		Value:    p.Value,
		Cost:     p.Cost,
		Fee:      totalFee,
		SellFee:  sellFee,
		Proceeds: p.Value - sellFee,
		Profit:   profit,
		Win:      profit > 0,
	}

	h, ok := l.history[symbol]
	if !ok {
		h = &History{Symbol: symbol}
		l.history[symbol] = h
	}
	h.Cost += p.Cost
	h.Profit += profit
	h.Closes++

	delete(l.positions, symbol)
	return c, true
}

// Position returns the open position for a symbol, if held.
func (l *Ledger) Position(symbol string) (*Position, bool) {
	p, ok := l.positions[symbol]
	return p, ok
}

// Held reports whether the instrument has an open position.
func (l *Ledger) Held(symbol string) bool {
	_, ok := l.positions[symbol]
	return ok
}

// Symbols returns the symbols of all open positions, in map order; callers
// needing determinism must sort.
func (l *Ledger) Symbols() []string {
	out := make([]string, 0, len(l.positions))
	for s := range l.positions {
		out = append(out, s)
	}
	return out
}

// TotalValue sums the market value of all open positions.
func (l *Ledger) TotalValue() int64 {
	var total int64
	for _, p := range l.positions {
		total += p.Value
	}
	return total
}

// OpenFees sums the accumulated fees of positions still open.
func (l *Ledger) OpenFees() int64 {
	var total int64
	for _, p := range l.positions {
		total += p.Fee
	}
	return total
}

// History returns the trade history for a symbol, if any round-trip closed.
func (l *Ledger) History(symbol string) (*History, bool) {
	h, ok := l.history[symbol]
	return h, ok
}

// Histories returns every instrument's trade history, in map order.
func (l *Ledger) Histories() []*History {
	out := make([]*History, 0, len(l.history))
	for _, h := range l.history {
		out = append(out, h)
	}
	return out
}
