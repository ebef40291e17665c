package solution

import (
	"cmp"
	"slices"

	"github.com/roach88/glaze/internal/umf"
)

// Candidate is one recipe proposed by the solver. Candidates are never
// modified after decoding; a new solve replaces the whole list.
type Candidate struct {
	Recipe            map[string]float64 `json:"recipe"`
	Error             float64            `json:"error"`
	MaterialsCount    int                `json:"materials_count"`
	RecipeUMF         *umf.UMF           `json:"recipe_umf"`
	WeightComposition map[string]float64 `json:"weight_composition,omitempty"`
}

// Material is one line of a recipe.
type Material struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Materials returns the recipe largest share first, ties by name.
func (c Candidate) Materials() []Material {
	out := make([]Material, 0, len(c.Recipe))
	for name, pct := range c.Recipe {
		out = append(out, Material{Name: name, Percent: pct})
	}
	slices.SortFunc(out, func(a, b Material) int {
		if a.Percent != b.Percent {
			return cmp.Compare(b.Percent, a.Percent)
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Uses reports whether material appears in the recipe.
func (c Candidate) Uses(material string) bool {
	_, ok := c.Recipe[material]
	return ok
}

// ErrorPercent is the error as a percentage.
func (c Candidate) ErrorPercent() float64 { return c.Error * 100 }

// Level buckets a magnitude for display.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ErrorLevel classifies the candidate's error percent: under 1% is low,
// over 10% is high.
func (c Candidate) ErrorLevel() Level {
	pct := c.ErrorPercent()
	switch {
	case pct < 1:
		return LevelLow
	case pct > 10:
		return LevelHigh
	default:
		return LevelMedium
	}
}

// Exclude drops candidates that use any of the named materials. The input is
// not modified.
func Exclude(cands []Candidate, materials []string) []Candidate {
	if len(materials) == 0 {
		return cands
	}
	out := make([]Candidate, 0, len(cands))
next:
	for _, c := range cands {
		for _, m := range materials {
			if c.Uses(m) {
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}

// MaterialNames lists every material used across cands, sorted.
func MaterialNames(cands []Candidate) []string {
	seen := make(map[string]struct{})
	for _, c := range cands {
		for name := range c.Recipe {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
