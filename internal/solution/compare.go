package solution

import (
	"math"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/umf"
)

const (
	// NoiseFloor is the magnitude at or below which an oxide counts as absent.
	NoiseFloor = 0.001

	lowDiff    = 0.01
	mediumDiff = 0.1
)

// Kind classifies one oxide of a comparison.
type Kind string

const (
	KindLow     Kind = "low"
	KindMedium  Kind = "medium"
	KindHigh    Kind = "high"
	KindExtra   Kind = "extra"
	KindMissing Kind = "missing"
)

// Marker is the short flag shown next to extra and missing oxides.
func (k Kind) Marker() string {
	switch k {
	case KindExtra:
		return "!"
	case KindMissing:
		return "?"
	}
	return ""
}

// Diff is the comparison of one oxide.
type Diff struct {
	Oxide string  `json:"oxide"`
	Kind  Kind    `json:"kind"`
	Value float64 `json:"value"` // candidate value, or the target value when missing
	// Target and Delta are zero for extra oxides.
	Target float64 `json:"target,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
}

// GroupDiff is the part of a comparison that falls in one oxide group.
type GroupDiff struct {
	Group oxide.Group `json:"group"`
	Diffs []Diff      `json:"diffs"`
}

// Comparison is a candidate formula compared with the target, grouped for
// display. Groups with nothing to show are omitted.
type Comparison struct {
	Groups []GroupDiff `json:"groups"`
}

// Counts tallies diffs by kind.
func (c Comparison) Counts() map[Kind]int {
	out := make(map[Kind]int)
	for _, g := range c.Groups {
		for _, d := range g.Diffs {
			out[d.Kind]++
		}
	}
	return out
}

// Lookup finds the diff for one oxide.
func (c Comparison) Lookup(symbol string) (Diff, bool) {
	for _, g := range c.Groups {
		for _, d := range g.Diffs {
			if d.Oxide == symbol {
				return d, true
			}
		}
	}
	return Diff{}, false
}

// Classify buckets an absolute difference.
func Classify(delta float64) Kind {
	switch {
	case delta < lowDiff:
		return KindLow
	case delta < mediumDiff:
		return KindMedium
	default:
		return KindHigh
	}
}

// Compare diffs a candidate's formula against target. Oxides at or below the
// noise floor are dropped from both sides first.
func Compare(candidate, target *umf.UMF) Comparison {
	cand := significant(candidate)
	want := significant(target)

	var order []string
	seen := make(map[string]bool)
	for _, u := range []*umf.UMF{target, candidate} {
		for _, k := range u.Keys() {
			if seen[k] {
				continue
			}
			if _, ok := cand[k]; !ok {
				if _, ok := want[k]; !ok {
					continue
				}
			}
			seen[k] = true
			order = append(order, k)
		}
	}

	byGroup := make(map[oxide.Group][]string)
	for _, k := range order {
		g := oxide.Classify(k)
		byGroup[g] = append(byGroup[g], k)
	}

	var out Comparison
	for _, g := range oxide.Groups {
		symbols := byGroup[g]
		if len(symbols) == 0 {
			continue
		}
		gd := GroupDiff{Group: g}
		for _, k := range oxide.SortInGroup(g, symbols) {
			gd.Diffs = append(gd.Diffs, diffOne(k, cand, want))
		}
		out.Groups = append(out.Groups, gd)
	}
	return out
}

func diffOne(symbol string, cand, want map[string]float64) Diff {
	c, hasC := cand[symbol]
	t, hasT := want[symbol]
	switch {
	case hasC && hasT:
		delta := math.Abs(c - t)
		return Diff{Oxide: symbol, Kind: Classify(delta), Value: c, Target: t, Delta: delta}
	case hasC:
		return Diff{Oxide: symbol, Kind: KindExtra, Value: c}
	default:
		return Diff{Oxide: symbol, Kind: KindMissing, Value: t, Target: t}
	}
}

func significant(u *umf.UMF) map[string]float64 {
	out := make(map[string]float64)
	for k, v := range u.Map() {
		if math.Abs(v) > NoiseFloor {
			out[k] = v
		}
	}
	return out
}
