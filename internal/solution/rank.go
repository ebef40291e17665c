package solution

import (
	"cmp"
	"math"
	"slices"
)

const (
	// LowErrorThreshold separates the exact-enough tier.
	LowErrorThreshold = 0.01
	// TieWindow is the error difference under which two candidates count
	// as equally good.
	TieWindow = 0.001

	// slack absorbs float noise so that decimal inputs exactly one window
	// apart (0.031 vs 0.030) tie.
	slack = 1e-9
)

// Rank orders candidates for display: the low-error tier first, simplest
// recipe first; then everything else by error, with near-equal errors broken
// by material count. Both sorts are stable. The input is not modified.
func Rank(cands []Candidate) []Candidate {
	var low, other []Candidate
	for _, c := range cands {
		if c.Error < LowErrorThreshold {
			low = append(low, c)
		} else {
			other = append(other, c)
		}
	}

	slices.SortStableFunc(low, func(a, b Candidate) int {
		return cmp.Compare(a.MaterialsCount, b.MaterialsCount)
	})
	slices.SortStableFunc(other, func(a, b Candidate) int {
		if Tied(a.Error, b.Error) {
			return cmp.Compare(a.MaterialsCount, b.MaterialsCount)
		}
		return cmp.Compare(a.Error, b.Error)
	})

	out := make([]Candidate, 0, len(cands))
	out = append(out, low...)
	return append(out, other...)
}

// Tied reports whether two errors differ by at most TieWindow. The bound is
// inclusive and widened by slack, so 0.030 and 0.031 tie even though their
// float64 difference is a hair above 0.001.
func Tied(a, b float64) bool {
	return math.Abs(a-b) <= TieWindow+slack
}
