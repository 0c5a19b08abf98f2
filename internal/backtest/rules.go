// Package backtest replays a chronological buy/sell simulation over
// annotated daily series and produces summary statistics. Buy and sell
// decisions are pluggable named rules looked up from a Registry, so new
// rules can be added without touching the engine loop.
package backtest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/TaiwanCCyoyo/Stock/internal/domain"
)

// ErrUnknownRule reports a configured rule name with no registry entry.
// This is a fatal configuration error: the run aborts before simulation.
var ErrUnknownRule = errors.New("unknown rule")

// Rule is a pure predicate over one annotated row, identified by its offset
// in the series. Rules must not mutate the series.
type Rule func(s *domain.Series, i int) bool

// Registry holds a named collection of rules for lookup and enumeration.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates an empty rule Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule under the given name, replacing any previous entry.
func (r *Registry) Register(name string, rule Rule) {
	r.rules[name] = rule
}

// Lookup retrieves a rule by name, or ErrUnknownRule naming the miss.
func (r *Registry) Lookup(name string) (Rule, error) {
	rule, ok := r.rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	return rule, nil
}

// List returns a sorted slice of all registered rule names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuyRules returns the built-in buy-side registry.
func BuyRules() *Registry {
	r := NewRegistry()
	r.Register("high-and-high", func(s *domain.Series, i int) bool {
		return s.CrossedPrevHigh[i]
	})
	r.Register("wide-breakout", func(s *domain.Series, i int) bool {
		return s.BreakoutWide[i].True()
	})
	r.Register("narrow-breakout", func(s *domain.Series, i int) bool {
		return s.BreakoutNarrow[i].True()
	})
	r.Register("expansion", func(s *domain.Series, i int) bool {
		return s.Expansion[i].True()
	})
	return r
}

// SellRules returns the built-in sell-side registry.
func SellRules() *Registry {
	r := NewRegistry()
	r.Register("low-and-low", func(s *domain.Series, i int) bool {
		return s.BrokePrevLow[i]
	})
	r.Register("clogging", func(s *domain.Series, i int) bool {
		return s.Clogging[i].True()
	})
	return r
}
