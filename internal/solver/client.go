package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/umf"
)

const (
	// DefaultBaseURL is where the service listens when run locally.
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout bounds a single call.
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries the request token so service logs can be
	// matched with the local solve log.
	RequestIDHeader = "X-Request-Id"

	maxBody = 8 << 20
)

// Client talks to one solving service. It is safe for concurrent use.
type Client struct {
	base  string
	http  *http.Client
	cache *lru.Cache[string, []solution.Candidate]
	ids   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-call timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCache keeps the last size successful solve responses, keyed by the
// exact request body. size <= 0 disables caching.
func WithCache(size int) Option {
	return func(c *Client) {
		if size <= 0 {
			c.cache = nil
			return
		}
		cache, err := lru.New[string, []solution.Candidate](size)
		if err != nil {
			slog.Warn("solve cache disabled", "size", size, "error", err)
			return
		}
		c.cache = cache
	}
}

// WithRequestIDs sets the generator used for requests that carry no token.
func WithRequestIDs(gen func() string) Option {
	return func(c *Client) { c.ids = gen }
}

// New returns a client for the service at base, e.g. DefaultBaseURL.
func New(base string, opts ...Option) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: DefaultTimeout},
		ids:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.base }

// Health checks that the service answers. Any 2xx counts as healthy; the
// body is not inspected.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, nil, "", nil)
}

// MolarMasses fetches the service's oxide table as a registry, keeping the
// order the service sent.
func (c *Client) MolarMasses(ctx context.Context) (*oxide.Registry, error) {
	ordered := umf.New()
	if err := c.do(ctx, "molar_masses", http.MethodGet, nil, "", ordered); err != nil {
		return nil, err
	}
	entries := make([]oxide.Entry, 0, ordered.Len())
	for _, sym := range ordered.Keys() {
		mass, _ := ordered.Get(sym)
		entries = append(entries, oxide.Entry{Symbol: sym, MolarMass: mass})
	}
	reg, err := oxide.NewRegistry(entries)
	if err != nil {
		return nil, &RequestError{Op: "molar_masses", Status: http.StatusOK, Message: err.Error(), Err: err}
	}
	if reg.Len() == 0 {
		return nil, &RequestError{Op: "molar_masses", Status: http.StatusOK, Message: "empty molar mass table"}
	}
	return reg, nil
}

// Solve asks for candidate recipes approximating req.UMF. Candidates come
// back in service order; ranking is the caller's job.
func (c *Client) Solve(ctx context.Context, req Request) ([]solution.Candidate, error) {
	req = req.withDefaults()
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode solve request: %w", err)
	}
	key := string(body)
	if c.cache != nil {
		if cands, ok := c.cache.Get(key); ok {
			slog.Debug("solve served from cache", "token", req.Token)
			return cands, nil
		}
	}

	var cands []solution.Candidate
	if err := c.do(ctx, "solve", http.MethodPost, body, req.Token, &cands); err != nil {
		return nil, err
	}
	if cands == nil {
		cands = []solution.Candidate{}
	}
	if c.cache != nil {
		c.cache.Add(key, cands)
	}
	return cands, nil
}

// UMFToWeights asks the service to convert a formula to weight percent.
func (c *Client) UMFToWeights(ctx context.Context, u *umf.UMF) (map[string]float64, error) {
	body, err := json.Marshal(struct {
		UMF *umf.UMF `json:"umf"`
	}{u})
	if err != nil {
		return nil, fmt.Errorf("encode umf_to_weights request: %w", err)
	}
	var out struct {
		Weights map[string]float64 `json:"weights"`
	}
	if err := c.do(ctx, "umf_to_weights", http.MethodPost, body, "", &out); err != nil {
		return nil, err
	}
	return out.Weights, nil
}

// WeightsToUMF asks the service to convert weight percent to a formula.
func (c *Client) WeightsToUMF(ctx context.Context, weights map[string]float64) (*umf.UMF, error) {
	body, err := json.Marshal(struct {
		Weights map[string]float64 `json:"weights"`
	}{weights})
	if err != nil {
		return nil, fmt.Errorf("encode weights_to_umf request: %w", err)
	}
	out := struct {
		UMF *umf.UMF `json:"umf"`
	}{UMF: umf.New()}
	if err := c.do(ctx, "weights_to_umf", http.MethodPost, body, "", &out); err != nil {
		return nil, err
	}
	return out.UMF, nil
}

func (c *Client) do(ctx context.Context, op, method string, body []byte, token string, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.base+"/"+op, rd)
	if err != nil {
		return &RequestError{Op: op, Message: err.Error(), Transport: true, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token == "" && c.ids != nil {
		token = c.ids()
	}
	if token != "" {
		httpReq.Header.Set(RequestIDHeader, token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		slog.Debug("solver request failed", "op", op, "token", token, "error", err)
		return &RequestError{Op: op, Message: err.Error(), Transport: true, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: err.Error(), Transport: true, Err: err}
	}
	slog.Debug("solver request",
		"op", op,
		"token", token,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromBody(op, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "malformed response: " + err.Error(), Err: err}
	}
	return nil
}

func errorFromBody(op string, status int, data []byte) *RequestError {
	re := &RequestError{Op: op, Status: status, Message: statusMessage(status)}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		re.Code = payload.Error
		if payload.Message != "" {
			re.Message = payload.Message
		}
	}
	return re
}
