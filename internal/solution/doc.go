// Package solution holds candidate recipes returned by the solver, the
// two-tier ranking applied to them, and the per-oxide comparison of a
// candidate's formula against the target.
package solution
