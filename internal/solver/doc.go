// Package solver is the HTTP client for the external recipe solving service.
//
// The service exposes:
//
//	GET  {base}/health          {"status": "ok"}
//	GET  {base}/molar_masses    {"SiO2": 60.08, ...}
//	POST {base}/solve           {umf, max_solutions, min_materials, error_tolerance} -> [candidate, ...]
//	POST {base}/umf_to_weights  {umf} -> {weights}
//	POST {base}/weights_to_umf  {weights} -> {umf}
//
// Failed calls return *RequestError. The client never retries; callers decide
// what a failure means for their state.
package solver
