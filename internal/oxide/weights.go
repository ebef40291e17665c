package oxide

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ToWeights converts molar ratios into weight percentages of the oxide mix.
// Oxides missing from the registry are skipped. Results are rounded to three
// decimals.
func (r *Registry) ToWeights(ratios map[string]float64) (map[string]float64, error) {
	symbols, grams := r.scaled(ratios, func(v, mass float64) float64 { return v * mass })
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no known oxides to convert")
	}
	total := floats.Sum(grams)
	if total <= 0 {
		return nil, fmt.Errorf("total weight must be positive")
	}
	out := make(map[string]float64, len(symbols))
	for i, s := range symbols {
		out[s] = round3(100 * grams[i] / total)
	}
	return out, nil
}

// FromWeights converts weight percentages into molar ratios normalised so that
// the smallest oxide is 1. Oxides missing from the registry are skipped.
func (r *Registry) FromWeights(weights map[string]float64) (map[string]float64, error) {
	symbols, moles := r.scaled(weights, func(v, mass float64) float64 { return v / mass })
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no known oxides to convert")
	}
	least := floats.Min(moles)
	if least <= 0 {
		return nil, fmt.Errorf("weights must be positive")
	}
	out := make(map[string]float64, len(symbols))
	for i, s := range symbols {
		out[s] = round3(moles[i] / least)
	}
	return out, nil
}

func (r *Registry) scaled(in map[string]float64, f func(v, mass float64) float64) ([]string, []float64) {
	var symbols []string
	var values []float64
	for _, s := range r.order {
		v, ok := in[s]
		if !ok {
			continue
		}
		mass := r.masses[s]
		symbols = append(symbols, s)
		values = append(values, f(v, mass))
	}
	return symbols, values
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
