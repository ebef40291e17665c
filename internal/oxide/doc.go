// Package oxide holds the oxide registry and the chemical-group classification
// rules used by every other part of glaze.
//
// Groups follow the Seger convention: fluxes (R2O/RO), amphoterics (R2O3) and
// glass formers (RO2). Each group has a canonical membership list; symbols
// outside those lists are classified by formula pattern.
//
// Classify is pure and total. The canonical tables are package-level values
// that are never mutated, so classification is stable for the lifetime of the
// process.
package oxide
