package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/edithistory/internal/config/loader"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "EDITHIST_"

// Config holds the typed settings of every section.
type Config struct {
	History HistoryConfig
	Logging LoggingConfig
	Metrics MetricsConfig
	View    ViewConfig
}

// HistoryConfig configures the history ledger.
type HistoryConfig struct {
	// SizeBudget is the footprint in bytes the history is trimmed to after
	// each action. Zero disables automatic trimming.
	SizeBudget int

	// IndexWidth is the default index width of growable sequences in bits
	// ("8", "16", "32", "64"), or empty for the built-in default.
	IndexWidth string
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string

	// Format is "text" or "json".
	Format string
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics. Empty disables the endpoint.
	Addr string

	// Namespace prefixes every metric name.
	Namespace string
}

// ViewConfig configures the history viewer.
type ViewConfig struct {
	// ShowEvents starts the viewer with event rows expanded.
	ShowEvents bool
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"history": map[string]any{
			"sizeBudget": 0,
			"indexWidth": "",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"metrics": map[string]any{
			"addr":      "",
			"namespace": "edithist",
		},
		"view": map[string]any{
			"showEvents": false,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := FromMap(defaultConfig())
	if err != nil {
		panic(err)
	}
	return c
}

// Load builds the configuration from defaults, the file at path (TOML or
// YAML by extension; empty or missing means none) and EDITHIST_ variables,
// then validates it.
func Load(path string) (*Config, error) {
	merged := defaultConfig()

	if path != "" {
		fl, err := loader.ForPath(path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	env, err := loader.NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, env)

	c, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromMap decodes a merged settings map. Missing settings keep their zero
// value; settings of the wrong type fail with ErrTypeMismatch.
func FromMap(m map[string]any) (*Config, error) {
	d := decoder{m: m}
	c := &Config{
		History: HistoryConfig{
			SizeBudget: d.getInt("history.sizeBudget"),
			IndexWidth: d.getString("history.indexWidth"),
		},
		Logging: LoggingConfig{
			Level:  d.getString("logging.level"),
			Format: d.getString("logging.format"),
		},
		Metrics: MetricsConfig{
			Addr:      d.getString("metrics.addr"),
			Namespace: d.getString("metrics.namespace"),
		},
		View: ViewConfig{
			ShowEvents: d.getBool("view.showEvents"),
		},
	}
	if d.err != nil {
		return nil, d.err
	}
	return c, nil
}

// Validate checks every setting and reports all failures at once.
func (c *Config) Validate() error {
	var errs []error
	if c.History.SizeBudget < 0 {
		errs = append(errs, &ValidationError{"history.sizeBudget", c.History.SizeBudget, "must not be negative"})
	}
	if _, err := schema.ParseWidth(c.History.IndexWidth); err != nil {
		errs = append(errs, &ValidationError{"history.indexWidth", c.History.IndexWidth, "must be 8, 16, 32 or 64"})
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, &ValidationError{"logging.level", c.Logging.Level, "must be debug, info, warn or error"})
	}
	if f := c.Logging.Format; f != "text" && f != "json" {
		errs = append(errs, &ValidationError{"logging.format", f, "must be text or json"})
	}
	return errors.Join(errs...)
}

// IndexWidth returns the parsed history index width.
func (c *Config) IndexWidth() schema.Width {
	w, _ := schema.ParseWidth(c.History.IndexWidth)
	return w
}

// LogLevel returns the parsed logging level, Info when invalid.
func (c *Config) LogLevel() slog.Level {
	l, err := parseLevel(c.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger builds a logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// decoder reads typed values out of a nested settings map and keeps the
// first error.
type decoder struct {
	m   map[string]any
	err error
}

func (d *decoder) lookup(path string) (any, bool) {
	var cur any = d.m
	for _, part := range strings.Split(path, ".") {
		cm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = cm[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (d *decoder) fail(path string, v any, want string) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s is %s, want %s", ErrTypeMismatch, path, typeName(v), want)
	}
}

func (d *decoder) getInt(path string) int {
	v, ok := d.lookup(path)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		if n <= math.MaxInt {
			return int(n)
		}
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	d.fail(path, v, "integer")
	return 0
}

func (d *decoder) getString(path string) string {
	v, ok := d.lookup(path)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case int, int64, uint64:
		// Widths are often written unquoted.
		return fmt.Sprint(s)
	case time.Duration:
		return s.String()
	}
	d.fail(path, v, "string")
	return ""
}

func (d *decoder) getBool(path string) bool {
	v, ok := d.lookup(path)
	if !ok {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	d.fail(path, v, "bool")
	return false
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64:
		return "integer"
	case float64:
		return "float"
	case map[string]any:
		return "table"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
