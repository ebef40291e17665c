package oxide

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Group is a chemical group tag.
type Group string

const (
	GroupR2ORO Group = "R2O_RO"
	GroupR2O3  Group = "R2O3"
	GroupRO2   Group = "RO2"
)

// Groups lists the groups in display order.
var Groups = []Group{GroupR2ORO, GroupR2O3, GroupRO2}

// Alkalis are the R2O members of GroupR2ORO in their preferred order.
var Alkalis = []string{"K2O", "Na2O", "Li2O"}

var canonical = map[Group][]string{
	GroupR2ORO: {"K2O", "Na2O", "Li2O", "MgO", "CaO", "SrO", "BaO", "ZnO", "PbO", "CdO", "CuO", "FeO", "MnO"},
	GroupR2O3:  {"Al2O3", "B2O3", "Fe2O3", "Cr2O3", "Bi2O3", "La2O3", "Y2O3", "P2O5", "V2O5"},
	GroupRO2:   {"SiO2", "TiO2", "ZrO2", "SnO2", "MnO2", "GeO2"},
}

// String returns the tag.
func (g Group) String() string { return string(g) }

// Valid reports whether g is one of the three known groups.
func (g Group) Valid() bool {
	_, ok := canonical[g]
	return ok
}

// Title returns a plain-text heading for the group.
func (g Group) Title() string {
	switch g {
	case GroupR2ORO:
		return "R₂O/RO"
	case GroupR2O3:
		return "R₂O₃"
	case GroupRO2:
		return "RO₂"
	}
	return string(g)
}

// ParseGroup accepts the tag in any case, e.g. "r2o_ro".
func ParseGroup(s string) (Group, bool) {
	g := Group(strings.ToUpper(strings.TrimSpace(s)))
	return g, g.Valid()
}

// Canonical returns a copy of the canonical membership list of g.
func Canonical(g Group) []string {
	members := canonical[g]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// IsCanonical reports whether symbol appears in any canonical list.
func IsCanonical(symbol string) bool {
	for _, g := range Groups {
		if indexOf(canonical[g], symbol) >= 0 {
			return true
		}
	}
	return false
}

// IsAlkali reports whether symbol is K2O, Na2O or Li2O.
func IsAlkali(symbol string) bool {
	return indexOf(Alkalis, symbol) >= 0
}

// Classify maps an oxide symbol to its group. Canonical lists are consulted in
// declared order, then the formula pattern; anything unmatched is R2O_RO.
func Classify(symbol string) Group {
	for _, g := range Groups {
		if indexOf(canonical[g], symbol) >= 0 {
			return g
		}
	}
	switch {
	case strings.Contains(symbol, "2O3"), strings.Contains(symbol, "2O5"):
		return GroupR2O3
	case strings.Contains(symbol, "O2"):
		return GroupRO2
	case strings.Contains(symbol, "2O"), strings.HasSuffix(symbol, "O"):
		return GroupR2ORO
	}
	return GroupR2ORO
}

// Normalize trims surrounding space and applies NFC so that symbols typed or
// pasted from different sources compare equal.
func Normalize(symbol string) string {
	return norm.NFC.String(strings.TrimSpace(symbol))
}

// SortInGroup orders symbols that all belong to g for display. Within R2O_RO
// the alkalis come first in K2O, Na2O, Li2O order; everything else keeps its
// relative input order.
func SortInGroup(g Group, symbols []string) []string {
	out := make([]string, 0, len(symbols))
	if g != GroupR2ORO {
		return append(out, symbols...)
	}
	for _, a := range Alkalis {
		if indexOf(symbols, a) >= 0 {
			out = append(out, a)
		}
	}
	for _, s := range symbols {
		if !IsAlkali(s) {
			out = append(out, s)
		}
	}
	return out
}

// DisplayName renders digits as Unicode subscripts, e.g. "Al₂O₃".
func DisplayName(symbol string) string {
	var b strings.Builder
	for _, r := range symbol {
		if r >= '0' && r <= '9' {
			b.WriteRune('₀' + (r - '0'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
