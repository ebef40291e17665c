package solver

import "github.com/roach88/glaze/internal/umf"

const (
	// DefaultMaxSolutions is sent when a request leaves MaxSolutions unset.
	DefaultMaxSolutions = 15

	// DefaultErrorTolerance is sent when a request leaves ErrorTolerance unset.
	DefaultErrorTolerance = 0.05
)

// Request is the body of a solve call.
type Request struct {
	UMF               *umf.UMF `json:"umf"`
	MaxSolutions      int      `json:"max_solutions"`
	MinMaterials      bool     `json:"min_materials"`
	ErrorTolerance    float64  `json:"error_tolerance"`
	ExcludedMaterials []string `json:"excluded_materials,omitempty"`

	// Token correlates the call with the local solve log. It is sent as a
	// header, not in the body, so identical bodies share a cache entry.
	Token string `json:"-"`
}

func (r Request) withDefaults() Request {
	if r.UMF == nil {
		r.UMF = umf.New()
	}
	if r.MaxSolutions <= 0 {
		r.MaxSolutions = DefaultMaxSolutions
	}
	if r.ErrorTolerance <= 0 {
		r.ErrorTolerance = DefaultErrorTolerance
	}
	return r
}
