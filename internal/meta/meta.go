// Package meta provides the instrument metadata table: symbol to display
// name, industry group, and security type, consumed read-only for universe
// filtering and report labeling.
package meta

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TypeStock marks common-stock instruments; other types (ETFs, warrants)
// are excluded from the backtest universe.
const TypeStock = "stock"

// ErrMissingMetadata reports an instrument that appears in the data set but
// has no metadata entry. Traded instruments without metadata abort the run.
var ErrMissingMetadata = errors.New("missing instrument metadata")

// Instrument is one metadata entry.
type Instrument struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Group  string `yaml:"group"`
	Type   string `yaml:"type"`
}

// Table is an immutable symbol-indexed metadata lookup.
type Table struct {
	bySymbol map[string]Instrument
}

// Load reads the instrument metadata YAML file, a list of instruments.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var instruments []Instrument
	if err := yaml.Unmarshal(data, &instruments); err != nil {
		return nil, fmt.Errorf("parsing instrument metadata: %w", err)
	}

	return NewTable(instruments), nil
}

// NewTable builds a Table from instrument entries.
func NewTable(instruments []Instrument) *Table {
	t := &Table{bySymbol: make(map[string]Instrument, len(instruments))}
	for _, ins := range instruments {
		t.bySymbol[ins.Symbol] = ins
	}
	return t
}

// Get returns the metadata for a symbol.
func (t *Table) Get(symbol string) (Instrument, bool) {
	ins, ok := t.bySymbol[symbol]
	return ins, ok
}

// Name returns the display name for a symbol, or the symbol itself when no
// metadata exists. Used only for labeling, never for filtering.
func (t *Table) Name(symbol string) string {
	if ins, ok := t.bySymbol[symbol]; ok {
		return ins.Name
	}
	return symbol
}

// Universe filters candidates down to common stocks belonging to one of the
// given groups. An empty group list admits every stock. The result is sorted
// so downstream iteration order is deterministic.
func (t *Table) Universe(candidates []string, groups []string) []string {
	groupSet := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		groupSet[g] = struct{}{}
	}

	var out []string
	for _, symbol := range candidates {
		ins, ok := t.bySymbol[symbol]
		if !ok || ins.Type != TypeStock {
			continue
		}
		if len(groupSet) > 0 {
			if _, ok := groupSet[ins.Group]; !ok {
				continue
			}
		}
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// Validate confirms every symbol has a metadata entry, returning
// ErrMissingMetadata naming the first gap.
func (t *Table) Validate(symbols []string) error {
	for _, symbol := range symbols {
		if _, ok := t.bySymbol[symbol]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingMetadata, symbol)
		}
	}
	return nil
}
