package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/skygridgo/internal/ctxlog"
	"github.com/vk/skygridgo/internal/outpath"
	"github.com/vk/skygridgo/internal/plan"
	"github.com/vk/skygridgo/internal/resolve"
)

// Config holds everything an App instance needs to run.
type Config struct {
	ConfigPaths []string // files or directories holding configuration

	OutputPath string
	Clobber    bool

	LogFormat string
	LogLevel  string

	Query string // file name to look up instead of printing the report
	Dump  bool   // dump the resolved tables verbatim
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	return &cfg, nil
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle: one resolved configuration and the analysis plan built on it.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	resolver *resolve.Resolver
	tests    map[string][]*plan.Test
	namer    *outpath.Namer
}

// New builds a fully initialized App: configuration loaded, files resolved,
// analysis plan parsed. Any configuration error surfaces here, before
// anything runs.
func New(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("logger configured")

	payload, err := loadPayload(ctx, cfg.ConfigPaths)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger.Debug("configuration loaded", "top_level_keys", len(payload))

	// The config file may set the output policy; flags take precedence.
	if v, ok := payload["output_path"]; ok {
		if s, isString := v.(string); isString && cfg.OutputPath == "" {
			cfg.OutputPath = s
		}
	}
	if v, ok := payload["clobber"]; ok {
		if b, isBool := v.(bool); isBool {
			cfg.Clobber = cfg.Clobber || b
		}
	}

	resolver, err := resolve.New(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("resolving file configuration: %w", err)
	}

	tests, err := plan.Parse(ctx, payload, resolver.ListFileTypes())
	if err != nil {
		return nil, fmt.Errorf("parsing analysis plan: %w", err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		resolver: resolver,
		tests:    tests,
		namer:    outpath.New(cfg.OutputPath, cfg.Clobber, nil),
	}, nil
}

// Resolver exposes the resolved configuration. This is primarily for testing.
func (a *App) Resolver() *resolve.Resolver {
	return a.resolver
}

// Tests exposes the parsed analysis plan. This is primarily for testing.
func (a *App) Tests() map[string][]*plan.Test {
	return a.tests
}
