package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/solver"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/umf"
)

//go:embed schema.cue
var schemaSource string

// Config holds every tunable setting.
type Config struct {
	Server           string  `yaml:"server" json:"server"`
	Persistence      string  `yaml:"persistence" json:"persistence"`
	LocationFile     string  `yaml:"locationFile" json:"locationFile"`
	BaseURL          string  `yaml:"baseURL" json:"baseURL"`
	Database         string  `yaml:"database" json:"database"`
	QuietPeriodMs    int     `yaml:"quietPeriodMs" json:"quietPeriodMs"`
	MaxSolutions     int     `yaml:"maxSolutions" json:"maxSolutions"`
	MinMaterials     bool    `yaml:"minMaterials" json:"minMaterials"`
	ErrorTolerance   float64 `yaml:"errorTolerance" json:"errorTolerance"`
	Locale           string  `yaml:"locale" json:"locale"`
	Layout           string  `yaml:"layout" json:"layout"`
	DisableMaterials bool    `yaml:"disableMaterials" json:"disableMaterials"`
	CacheSize        int     `yaml:"cacheSize" json:"cacheSize"`
	RequestTimeoutMs int     `yaml:"requestTimeoutMs" json:"requestTimeoutMs"`
}

// Dir is where glaze keeps its config, location file and database.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "glaze")
	}
	return ".glaze"
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

// Default returns the built-in settings.
func Default() Config {
	dir := Dir()
	return Config{
		Server:           solver.DefaultBaseURL,
		Persistence:      string(persist.StrategyFragment),
		LocationFile:     filepath.Join(dir, "location"),
		BaseURL:          "glaze://recipe/",
		Database:         filepath.Join(dir, "glaze.db"),
		QuietPeriodMs:    500,
		MaxSolutions:     solver.DefaultMaxSolutions,
		MinMaterials:     true,
		ErrorTolerance:   solver.DefaultErrorTolerance,
		Locale:           "en",
		Layout:           string(umf.LayoutDynamic),
		DisableMaterials: false,
		CacheSize:        64,
		RequestTimeoutMs: int(solver.DefaultTimeout / time.Millisecond),
	}
}

// Load reads the file at path. A missing file yields Default when
// allowMissing is set.
func Load(path string, allowMissing bool) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && allowMissing {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over Default and validates it.
func Parse(data []byte) (Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := checkSchema(doc); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func checkSchema(doc map[string]any) error {
	if doc == nil {
		doc = map[string]any{}
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	v := schema.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}
	return nil
}

// Validate checks relations the schema cannot express.
func (c Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if _, err := persist.ParseStrategy(c.Persistence); err != nil {
		return fmt.Errorf("persistence: %w", err)
	}
	if _, err := umf.ParseLayout(c.Layout); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if _, err := status.ParseLocale(c.Locale); err != nil {
		return fmt.Errorf("locale: %w", err)
	}
	if c.MaxSolutions <= 0 {
		return fmt.Errorf("maxSolutions must be positive, got %d", c.MaxSolutions)
	}
	if c.ErrorTolerance <= 0 {
		return fmt.Errorf("errorTolerance must be positive, got %v", c.ErrorTolerance)
	}
	if c.QuietPeriodMs < 0 {
		return fmt.Errorf("quietPeriodMs must not be negative, got %d", c.QuietPeriodMs)
	}
	return nil
}

// QuietPeriod is the debounce window.
func (c Config) QuietPeriod() time.Duration {
	return time.Duration(c.QuietPeriodMs) * time.Millisecond
}

// RequestTimeout bounds one solver call.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}
