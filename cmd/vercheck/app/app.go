// Package app provides the application context and dependency management
// for the vercheck CLI: configuration, logging and the lazily created
// Auditor shared by all commands.
package app

import (
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/vercheck"
	"github.com/agentstation/vercheck/internal/appcontext"
	"github.com/agentstation/vercheck/internal/declared"
	"github.com/agentstation/vercheck/internal/loader"
	"github.com/agentstation/vercheck/internal/manifest"
	"github.com/agentstation/vercheck/pkg/errors"
)

// App represents the vercheck application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Auditor instance (lazy-initialized, singleton)
	mu      sync.RWMutex
	auditor vercheck.Auditor
}

var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// MetricsFile returns the metrics textfile path.
func (a *App) MetricsFile() string {
	return a.config.MetricsFile
}

// Auditor returns the auditor, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Auditor() (vercheck.Auditor, error) {
	a.mu.RLock()
	if a.auditor != nil {
		aud := a.auditor
		a.mu.RUnlock()
		return aud, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.auditor != nil {
		return a.auditor, nil
	}

	opts, err := a.auditorOptions()
	if err != nil {
		return nil, err
	}
	aud, err := vercheck.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "auditor", "", err)
	}
	a.auditor = aud
	return aud, nil
}

// auditorOptions translates the configuration into auditor options.
func (a *App) auditorOptions() ([]vercheck.Option, error) {
	cfg := a.config
	opts := []vercheck.Option{vercheck.WithLogger(a.logger)}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "."
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, errors.WrapIO("resolve", cfg.WorkDir, err)
	}
	opts = append(opts, vercheck.WithWorkDir(workDir))

	if cfg.Binary != "" {
		l, err := loader.NewFileLoader(cfg.Binary, workDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vercheck.WithLoader(l))
	}

	if cfg.DepsFile != "" {
		d, err := declared.Load(cfg.DepsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vercheck.WithDeclared(d))
	}

	switch cfg.Resolver {
	case ResolverModFile:
		opts = append(opts, vercheck.WithResolver(manifest.NewModFileResolver(workDir)))
	case ResolverNone:
		opts = append(opts, vercheck.WithResolver(manifest.None))
	}
	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithAuditor sets a custom auditor instance (useful for testing).
func WithAuditor(aud vercheck.Auditor) Option {
	return func(a *App) error {
		a.auditor = aud
		return nil
	}
}
