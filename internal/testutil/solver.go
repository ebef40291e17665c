package testutil

import (
	"context"
	"sync"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/solver"
)

// FakeSolver stands in for the solving service.
//
// By default every solve returns Candidates. Set Respond for per-request
// answers. All requests are recorded.
//
// Thread-safety: safe for concurrent use.
type FakeSolver struct {
	mu sync.Mutex

	Candidates []solution.Candidate
	Respond    func(req solver.Request) ([]solution.Candidate, error)
	Registry   *oxide.Registry
	MassesErr  error
	HealthErr  error

	requests []solver.Request
}

// NewFakeSolver returns a solver that answers every request with cands.
func NewFakeSolver(cands ...solution.Candidate) *FakeSolver {
	return &FakeSolver{Candidates: cands}
}

// Health implements engine.Solver.
func (f *FakeSolver) Health(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.HealthErr
}

// MolarMasses implements engine.Solver. It returns the default table unless
// Registry is set.
func (f *FakeSolver) MolarMasses(context.Context) (*oxide.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MassesErr != nil {
		return nil, f.MassesErr
	}
	if f.Registry != nil {
		return f.Registry, nil
	}
	return oxide.Default(), nil
}

// Solve implements engine.Solver.
func (f *FakeSolver) Solve(ctx context.Context, req solver.Request) ([]solution.Candidate, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	respond, cands := f.Respond, f.Candidates
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &solver.RequestError{Op: "solve", Message: err.Error(), Transport: true, Err: err}
	}
	if respond != nil {
		return respond(req)
	}
	return cands, nil
}

// Requests returns every solve request received so far.
func (f *FakeSolver) Requests() []solver.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]solver.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Calls returns the number of solve requests received.
func (f *FakeSolver) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
