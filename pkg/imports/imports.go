// Package imports builds the import catalog: the versions dependencies
// report about themselves once they are loaded.
package imports

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agentstation/vercheck/internal/declared"
	"github.com/agentstation/vercheck/internal/loader"
	"github.com/agentstation/vercheck/internal/platform"
	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/errors"
	"github.com/agentstation/vercheck/pkg/logging"
)

const tracerName = "github.com/agentstation/vercheck/pkg/imports"

// Provider computes a pseudo entry. Errors and panics are absorbed by the
// builder and reported as an unknown version.
type Provider func(ctx context.Context) (version, location, comment string, err error)

// Host identifies the program being audited. Its catalog entry carries
// "<Branch>: <Version>" as comment.
type Host struct {
	Name    string
	Branch  string
	Version string
}

// Comment returns the build identification attached to the host entry.
func (h Host) Comment() string {
	return fmt.Sprintf("%s: %s", h.Branch, h.Version)
}

// Options configures Build.
type Options struct {
	Loader loader.Loader
	Host   Host

	// Manifest, when set, fills in versions the loader could not determine
	// for modules found at the location the manifest expects.
	Manifest *catalogs.ManifestCatalog

	// Providers overrides the built-in probe providers.
	Providers map[declared.Probe]Provider

	// Noise receives the ScopedNoise rules for the duration of the build.
	Noise       *logging.NoiseFilter
	ScopedNoise []string
}

// DefaultProviders returns the providers for the built-in probes.
func DefaultProviders() map[declared.Probe]Provider {
	return map[declared.Probe]Provider{
		declared.ProbeRuntime:  runtimeProvider,
		declared.ProbePlatform: platformProvider,
		declared.ProbeCrypto:   cryptoProvider,
	}
}

func runtimeProvider(context.Context) (string, string, string, error) {
	exe, err := os.Executable()
	if err != nil {
		return platform.GoVersion(), "", "", nil
	}
	return platform.GoVersion(), exe, "", nil
}

func platformProvider(context.Context) (string, string, string, error) {
	return platform.Label(), "", "", nil
}

func cryptoProvider(context.Context) (string, string, string, error) {
	v, comment := platform.Crypto()
	return v, "", comment, nil
}

// Build loads every declared package in order and records what it reports.
// Only a malformed declaration list is an error; load failures are recorded
// in the catalog.
func Build(ctx context.Context, pkgs []declared.Package, opts Options) (*catalogs.ImportCatalog, error) {
	if err := declared.Validate(pkgs); err != nil {
		return nil, err
	}
	for _, p := range pkgs {
		if p.Module != "" && opts.Loader == nil {
			return nil, errors.NewValidationError("loader", nil, fmt.Sprintf("package %q needs a loader", p.Name))
		}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "imports.Build")
	defer span.End()

	logger := logging.FromContext(ctx).With().Str("component", "imports").Logger()

	if opts.Noise != nil && len(opts.ScopedNoise) > 0 {
		pop, err := opts.Noise.Push(zerolog.WarnLevel, opts.ScopedNoise...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, errors.WrapValidation("noise", err)
		}
		defer pop()
	}

	providers := DefaultProviders()
	for k, v := range opts.Providers {
		providers[k] = v
	}

	cat := catalogs.NewImportCatalog()
	failed := 0
	for _, p := range pkgs {
		var e catalogs.Entry
		if p.Module != "" {
			e = loadModule(ctx, p, opts)
		} else {
			e = probe(ctx, p, providers[p.Probe], &logger)
		}
		if e.IsFailed() {
			failed++
			logger.Debug().Str("package", p.Name).Str("failure", e.Failure.String()).Msg("dependency failed to load")
		}
		if !cat.Add(e) {
			logger.Warn().Str("package", p.Name).Msg("duplicate declared package ignored")
		}
	}

	span.SetAttributes(
		attribute.Int("vercheck.imports.entries", cat.Len()),
		attribute.Int("vercheck.imports.failed", failed),
	)
	span.SetStatus(codes.Ok, "")
	return cat, nil
}

// loadModule loads one module. A panicking loader fails only that entry.
func loadModule(ctx context.Context, p declared.Package, opts Options) (e catalogs.Entry) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Debug().Str("package", p.Name).Interface("panic", r).Msg("loader panicked")
			e = catalogs.Failed(p.Name, catalogs.Failure{Class: "panic", Message: fmt.Sprint(r)})
		}
	}()

	mod, err := opts.Loader.Load(ctx, p.Module)
	if err != nil {
		return catalogs.Failed(p.Name, catalogs.Failure{
			Class:   errors.TypeName(err),
			Message: err.Error(),
			Frame:   loader.FrameOf(err),
		})
	}

	ver := loader.VersionOf(mod)
	loc := catalogs.InstallRoot(mod.Dir)
	comment := mod.Comment
	if p.Name == opts.Host.Name {
		comment = opts.Host.Comment()
	}

	if ver == catalogs.UnknownVersion {
		if rec, ok := opts.Manifest.Lookup(p.Name); ok && loc != "" && loc == catalogs.NormalizePath(rec.Location) {
			ver = rec.Version
		}
	}
	return catalogs.Loaded(p.Name, ver, loc, comment)
}

// probe runs a provider, degrading every failure to an unknown version.
func probe(ctx context.Context, p declared.Package, fn Provider, logger *zerolog.Logger) (e catalogs.Entry) {
	unknown := catalogs.Loaded(p.Name, catalogs.UnknownVersion, "", "")
	if fn == nil {
		return unknown
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Debug().Str("probe", string(p.Probe)).Interface("panic", r).Msg("probe panicked")
			e = unknown
		}
	}()
	ver, loc, comment, err := fn(ctx)
	if err != nil {
		logger.Debug().Err(err).Str("probe", string(p.Probe)).Msg("probe failed")
		return unknown
	}
	if ver == "" {
		ver = catalogs.UnknownVersion
	}
	return catalogs.Loaded(p.Name, ver, loc, comment)
}
