package oxide

import (
	"fmt"
	"math"
	"sort"
)

// Registry maps oxide symbols to molar masses (g/mol) and remembers the order
// in which the entries were loaded.
type Registry struct {
	masses map[string]float64
	order  []string
}

// Entry is one registry row.
type Entry struct {
	Symbol    string  `json:"symbol"`
	MolarMass float64 `json:"molar_mass"`
}

var fallbackEntries = []Entry{
	{"SiO2", 60.084}, {"Al2O3", 101.961}, {"B2O3", 69.620}, {"Na2O", 61.979},
	{"K2O", 94.196}, {"MgO", 40.304}, {"CaO", 56.077}, {"SrO", 103.620},
	{"BaO", 153.326}, {"ZnO", 81.380}, {"TiO2", 79.866}, {"Fe2O3", 159.688},
}

// Default returns the built-in table used when the solver's registry cannot be
// loaded.
func Default() *Registry {
	r, _ := NewRegistry(fallbackEntries)
	return r
}

// NewRegistry builds a registry from entries in load order. An empty or
// duplicate symbol is an error. Entries without a usable mass (the solver
// lists loss-on-ignition as 0) are skipped.
func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		masses: make(map[string]float64, len(entries)),
		order:  make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		symbol := Normalize(e.Symbol)
		if symbol == "" {
			return nil, fmt.Errorf("registry entry with empty symbol")
		}
		if _, dup := r.masses[symbol]; dup {
			return nil, fmt.Errorf("duplicate registry entry %q", symbol)
		}
		if math.IsNaN(e.MolarMass) || math.IsInf(e.MolarMass, 0) || e.MolarMass <= 0 {
			continue
		}
		r.masses[symbol] = e.MolarMass
		r.order = append(r.order, symbol)
	}
	return r, nil
}

// FromMap builds a registry from an unordered map; symbols are sorted so the
// result is deterministic.
func FromMap(m map[string]float64) (*Registry, error) {
	symbols := make([]string, 0, len(m))
	for s := range m {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	entries := make([]Entry, 0, len(symbols))
	for _, s := range symbols {
		entries = append(entries, Entry{Symbol: s, MolarMass: m[s]})
	}
	return NewRegistry(entries)
}

// Has reports whether symbol is known.
func (r *Registry) Has(symbol string) bool {
	_, ok := r.masses[symbol]
	return ok
}

// MolarMass returns the mass of symbol.
func (r *Registry) MolarMass(symbol string) (float64, bool) {
	m, ok := r.masses[symbol]
	return m, ok
}

// Symbols returns all symbols in load order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entries returns all entries in load order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, Entry{Symbol: s, MolarMass: r.masses[s]})
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.order) }

// Extras returns registry symbols outside every canonical list that classify
// into g, in load order.
func (r *Registry) Extras(g Group) []string {
	var out []string
	for _, s := range r.order {
		if !IsCanonical(s) && Classify(s) == g {
			out = append(out, s)
		}
	}
	return out
}
