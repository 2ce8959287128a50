// Package main is the entry point for edithist, which replays a Lua edit
// script against a schema-typed document and reports the resulting history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/edithistory/internal/config"
	"github.com/dshills/edithistory/internal/engine"
	"github.com/dshills/edithistory/internal/engine/schema"
	"github.com/dshills/edithistory/internal/metrics"
	"github.com/dshills/edithistory/internal/script"
	"github.com/dshills/edithistory/internal/view"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// reloadDebounce coalesces bursts of writes to the config file.
const reloadDebounce = 250 * time.Millisecond

// options holds the command line.
type options struct {
	ConfigPath  string
	SchemaPath  string
	DocPath     string
	ScriptPath  string
	Format      string
	Query       string
	LogLevel    string
	MetricsAddr string
	Events      bool
	View        bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := newEngine(ctx, cfg, opts, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Budget changes apply to the running engine.
	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, reloadDebounce, logger, func(c *config.Config) {
			e.SetSizeBudget(c.History.SizeBudget)
		})
		if err != nil {
			logger.Warn("config watch disabled", slog.String("error", err.Error()))
		} else {
			defer w.Close()
		}
	}

	if opts.ScriptPath != "" {
		rt := script.New(e, script.WithLogger(logger))
		err := rt.DoFile(ctx, opts.ScriptPath)
		rt.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.View {
		v, err := view.NewTerminal(e,
			view.WithEvents(opts.Events || cfg.View.ShowEvents),
			view.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
			return 1
		}
		if err := v.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.Query != "" {
		if err := queryReport(os.Stdout, e, opts.Query, opts.Events); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeReport(os.Stdout, e, opts.Format, opts.Events); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newEngine loads the schema and initial document and starts the metrics
// endpoint when one is configured.
func newEngine(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) (*engine.Engine, error) {
	t, err := schema.LoadFile(opts.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	eopts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithIndexWidth(cfg.IndexWidth()),
		engine.WithSizeBudget(cfg.History.SizeBudget),
	}
	if opts.DocPath != "" {
		v, err := loadDocument(t, opts.DocPath)
		if err != nil {
			return nil, err
		}
		eopts = append(eopts, engine.WithInitial(v))
	}

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		c, err := metrics.New(reg, cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		eopts = append(eopts, engine.WithRecorder(c))
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg, logger); err != nil {
				logger.Error("metrics endpoint stopped", slog.String("error", err.Error()))
			}
		}()
	}

	return engine.New(t, eopts...)
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.SchemaPath, "schema", "", "Path to the document schema (YAML)")
	flag.StringVar(&opts.SchemaPath, "s", "", "Path to the document schema (shorthand)")
	flag.StringVar(&opts.DocPath, "doc", "", "Path to the initial document (YAML)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua edit script to run")
	flag.StringVar(&opts.Format, "format", "text", "Report format (text, json, yaml)")
	flag.StringVar(&opts.Query, "query", "", "Print only this path of the JSON report (e.g. actions.#.status)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.BoolVar(&opts.Events, "events", false, "Include events in the report")
	flag.BoolVar(&opts.View, "view", false, "Browse the history interactively before reporting")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "edithist - schema-driven edit history\n\n")
		fmt.Fprintf(os.Stderr, "Usage: edithist -schema doc.yaml [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  edithist -s todo.yaml -script edits.lua            Run a script and print the history\n")
		fmt.Fprintf(os.Stderr, "  edithist -s todo.yaml -doc start.yaml -events      Include event details\n")
		fmt.Fprintf(os.Stderr, "  edithist -s todo.yaml -script edits.lua -view      Browse with undo and redo\n")
		fmt.Fprintf(os.Stderr, "  edithist -s todo.yaml -query document.items        Print one part of the report\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("edithist %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.SchemaPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -schema is required\n")
		flag.Usage()
		os.Exit(2)
	}

	switch opts.Format {
	case "text", "json", "yaml":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format %q (must be text, json, or yaml)\n", opts.Format)
		os.Exit(1)
	}

	return opts
}
