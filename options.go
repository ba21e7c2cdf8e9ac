package vercheck

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/vercheck/internal/declared"
	"github.com/agentstation/vercheck/internal/loader"
	"github.com/agentstation/vercheck/internal/manifest"
	"github.com/agentstation/vercheck/pkg/errors"
	"github.com/agentstation/vercheck/pkg/imports"
	"github.com/agentstation/vercheck/pkg/logging"
	"github.com/agentstation/vercheck/pkg/reconcile"
)

// Option is a function that configures an Auditor.
type Option func(*config) error

type config struct {
	loader       loader.Loader
	resolver     manifest.Resolver
	declared     *declared.Config
	requirements []string
	host         *imports.Host
	workDir      string
	reconcile    *reconcile.Options
	noise        *logging.NoiseFilter
	providers    map[declared.Probe]imports.Provider
	logger       *zerolog.Logger
}

func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithLoader sets the loader used to inspect dependencies. The default
// inspects the build information of the running binary.
func WithLoader(l loader.Loader) Option {
	return func(c *config) error {
		if l == nil {
			return &errors.ValidationError{Field: "loader", Message: "cannot be nil"}
		}
		c.loader = l
		return nil
	}
}

// WithResolver sets the manifest resolver. The default runs go list in
// the work dir; manifest.None disables cross-checking.
func WithResolver(r manifest.Resolver) Option {
	return func(c *config) error {
		if r == nil {
			return &errors.ValidationError{Field: "resolver", Message: "cannot be nil"}
		}
		c.resolver = r
		return nil
	}
}

// WithDeclared sets the declared dependency configuration.
func WithDeclared(cfg *declared.Config) Option {
	return func(c *config) error {
		if cfg == nil {
			return &errors.ValidationError{Field: "declared", Message: "cannot be nil"}
		}
		if err := declared.Validate(cfg.Packages); err != nil {
			return err
		}
		c.declared = cfg
		return nil
	}
}

// WithRequirements overrides the requirements resolved against the manifest.
func WithRequirements(reqs ...string) Option {
	return func(c *config) error {
		c.requirements = append([]string(nil), reqs...)
		return nil
	}
}

// WithHost sets the identification of the program being audited.
func WithHost(h imports.Host) Option {
	return func(c *config) error {
		c.host = &h
		return nil
	}
}

// WithWorkDir sets the source directory holding go.mod. Defaults to the
// current directory.
func WithWorkDir(dir string) Option {
	return func(c *config) error {
		c.workDir = dir
		return nil
	}
}

// WithReconcileOptions replaces the reconciliation options derived from the
// declared configuration.
func WithReconcileOptions(opts reconcile.Options) Option {
	return func(c *config) error {
		c.reconcile = &opts
		return nil
	}
}

// WithNoiseFilter sets the filter that receives noise suppression rules.
// Defaults to the process-wide logging.Noise filter.
func WithNoiseFilter(f *logging.NoiseFilter) Option {
	return func(c *config) error {
		c.noise = f
		return nil
	}
}

// WithPlatformProvider replaces the platform label provider.
func WithPlatformProvider(p imports.Provider) Option {
	return withProvider(declared.ProbePlatform, p)
}

// WithCryptoProvider replaces the crypto stack provider.
func WithCryptoProvider(p imports.Provider) Option {
	return withProvider(declared.ProbeCrypto, p)
}

// WithRuntimeProvider replaces the Go runtime provider.
func WithRuntimeProvider(p imports.Provider) Option {
	return withProvider(declared.ProbeRuntime, p)
}

func withProvider(probe declared.Probe, p imports.Provider) Option {
	return func(c *config) error {
		if p == nil {
			return &errors.ValidationError{Field: string(probe), Message: "provider cannot be nil"}
		}
		if c.providers == nil {
			c.providers = make(map[declared.Probe]imports.Provider)
		}
		c.providers[probe] = p
		return nil
	}
}

// WithLogger sets the logger. Defaults to the logger in the build context.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}
