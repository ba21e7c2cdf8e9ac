// Package vercheck audits the modules a Go program runs with.
//
// It builds two catalogs of dependency versions, one from the build
// information of the binary (what was actually linked) and one from the
// module manifest (what go.mod resolves to), then reports where they
// disagree. Catalogs are built once, on first use, and cached for the life
// of the Auditor:
//
//	a, err := vercheck.New()
//	if err != nil {
//		return err
//	}
//	text, err := a.Report(ctx, false, false)
//
// The package-level PackageVersions and PackageVersionsString use a
// process-wide Auditor for the running binary.
package vercheck

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentstation/vercheck/internal/declared"
	"github.com/agentstation/vercheck/internal/loader"
	"github.com/agentstation/vercheck/internal/manifest"
	"github.com/agentstation/vercheck/internal/modcache"
	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/errors"
	"github.com/agentstation/vercheck/pkg/imports"
	"github.com/agentstation/vercheck/pkg/logging"
	"github.com/agentstation/vercheck/pkg/reconcile"
	"github.com/agentstation/vercheck/pkg/report"
)

const tracerName = "github.com/agentstation/vercheck"

// Auditor builds and serves the version snapshot of one program.
type Auditor interface {
	// Snapshot returns the cached snapshot, building it on first call.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Versions returns name to version for every reported entry.
	Versions(ctx context.Context) (map[string]string, error)

	// Report renders the snapshot as text.
	Report(ctx context.Context, showPaths, debug bool) (string, error)

	// Warnings returns the reconciliation warnings.
	Warnings(ctx context.Context) ([]reconcile.Warning, error)

	// OnSnapshot registers a callback fired once the snapshot is built.
	OnSnapshot(SnapshotHook)

	// OnWarning registers a callback fired for each warning once the
	// snapshot is built.
	OnWarning(WarningHook)
}

// Snapshot is the immutable result of one audit.
type Snapshot struct {
	Imports  *catalogs.ImportCatalog
	Manifest *catalogs.ManifestCatalog
	Result   *reconcile.Result

	// ManifestErr records why the manifest could not be resolved, if it
	// could not. Cross-checking is disabled in that case.
	ManifestErr error

	Requirements  []string
	SearchPath    []string
	GoFlags       string
	BuildDuration time.Duration
}

// Entries returns the import entries followed by the extra manifest entries.
func (s *Snapshot) Entries() []catalogs.Entry {
	return append(s.Imports.Entries(), s.Result.Extras...)
}

// Warnings returns the warning messages.
func (s *Snapshot) Warnings() []string {
	return s.Result.Messages()
}

// Versions returns name to version for every entry.
func (s *Snapshot) Versions() map[string]string {
	return report.Versions(s.Entries())
}

// Report renders the snapshot.
func (s *Snapshot) Report(showPaths, debug bool) string {
	return report.Format(s.Entries(), s.Warnings(), report.Options{
		ShowPaths:    showPaths,
		Debug:        debug,
		GoFlags:      s.GoFlags,
		Requirements: s.Requirements,
		SearchPath:   s.SearchPath,
	})
}

// Failed counts the declared packages that could not be loaded.
func (s *Snapshot) Failed() int {
	n := 0
	for _, e := range s.Imports.Entries() {
		if e.IsFailed() {
			n++
		}
	}
	return n
}

// auditor is the internal implementation of the Auditor interface
type auditor struct {
	*hooks
	config *config

	mu    sync.RWMutex
	built bool
	snap  *Snapshot
	err   error
}

// New creates an Auditor. Without options it audits the running binary
// against the go.mod in the current directory.
func New(opts ...Option) (Auditor, error) {
	cfg := &config{}
	if err := cfg.apply(opts...); err != nil {
		return nil, errors.WrapResource("configure", "auditor", "", err)
	}
	if err := cfg.defaults(); err != nil {
		return nil, errors.WrapResource("configure", "auditor", "", err)
	}
	return &auditor{hooks: newHooks(), config: cfg}, nil
}

// moduleLister is implemented by loaders that know the module graph.
type moduleLister interface {
	MainModule() loader.MainModule
	Deps() []string
}

func (c *config) defaults() error {
	if c.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.WrapIO("getwd", "", err)
		}
		c.workDir = wd
	}
	if c.loader == nil {
		l, err := loader.NewBuildInfoLoader(c.workDir)
		if err != nil {
			return err
		}
		c.loader = l
	}

	lister, _ := c.loader.(moduleLister)
	if c.declared == nil {
		if lister != nil {
			c.declared = declared.Default(lister.MainModule().Path, lister.Deps())
		} else {
			c.declared = declared.Default("", nil)
		}
	}
	if c.requirements == nil {
		c.requirements = c.declared.Requirements
	}
	if c.host == nil {
		h := hostFor(c.declared.Host, lister)
		c.host = &h
	}
	if c.resolver == nil {
		c.resolver = manifest.NewGoListResolver(c.workDir)
	}
	if c.reconcile == nil {
		opts := reconcile.DefaultOptions(c.host.Name)
		opts.NotImportVersionable = c.declared.NotImportVersionable
		opts.Ignorable = c.declared.Ignorable
		for name, r := range c.declared.Renames {
			opts.Renames[name] = reconcile.Rename{Manifest: r.Manifest, Tag: r.Tag}
		}
		c.reconcile = &opts
	}
	if c.noise == nil {
		c.noise = logging.Noise()
	}
	if len(c.declared.Noise.Persistent) > 0 {
		if err := c.noise.Ignore(zerolog.WarnLevel, c.declared.Noise.Persistent...); err != nil {
			return errors.WrapValidation("noise.persistent", err)
		}
	}
	return nil
}

// Snapshot implements Auditor. The snapshot is built at most once; later
// and concurrent callers share it. Hooks run after the lock is released, so
// they may call back into the Auditor.
func (a *auditor) Snapshot(ctx context.Context) (*Snapshot, error) {
	a.mu.RLock()
	if a.built {
		s, err := a.snap, a.err
		a.mu.RUnlock()
		return s, err
	}
	a.mu.RUnlock()

	s, fire, err := a.buildOnce(ctx)
	if fire {
		a.trigger(s)
	}
	return s, err
}

// buildOnce builds the snapshot under the write lock. fire is true only for
// the caller that built a successful snapshot.
func (a *auditor) buildOnce(ctx context.Context) (s *Snapshot, fire bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.built {
		return a.snap, false, a.err
	}

	a.snap, a.err = a.build(ctx)
	a.built = true
	return a.snap, a.err == nil, a.err
}

func (a *auditor) build(ctx context.Context) (*Snapshot, error) {
	cfg := a.config
	if cfg.logger != nil {
		ctx = logging.WithLogger(ctx, cfg.logger)
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "vercheck.Snapshot",
		trace.WithAttributes(attribute.String("vercheck.work_dir", cfg.workDir)))
	defer span.End()

	ctx = logging.WithSpan(ctx)
	logger := logging.FromContext(ctx)

	start := time.Now()

	man, manErr := manifest.Build(ctx, cfg.resolver, cfg.workDir, cfg.requirements)

	imp, err := imports.Build(ctx, cfg.declared.Packages, imports.Options{
		Loader:      cfg.loader,
		Host:        *cfg.host,
		Manifest:    man,
		Providers:   cfg.providers,
		Noise:       cfg.noise,
		ScopedNoise: cfg.declared.Noise.Scoped,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.WrapResource("build", "snapshot", "", err)
	}

	_, rspan := otel.Tracer(tracerName).Start(ctx, "reconcile.Reconcile")
	res := reconcile.Reconcile(imp, man, *cfg.reconcile)
	rspan.SetAttributes(
		attribute.Int("vercheck.warnings", len(res.Warnings)),
		attribute.Int("vercheck.extras", len(res.Extras)),
	)
	rspan.End()

	s := &Snapshot{
		Imports:       imp,
		Manifest:      man,
		Result:        res,
		ManifestErr:   manErr,
		Requirements:  a.debugRequirements(),
		SearchPath:    modcache.SearchPath(cfg.workDir),
		GoFlags:       os.Getenv("GOFLAGS"),
		BuildDuration: time.Since(start),
	}

	span.SetAttributes(
		attribute.Int("vercheck.imports", imp.Len()),
		attribute.Int("vercheck.manifest", man.Len()),
		attribute.Int("vercheck.warnings", len(res.Warnings)),
	)
	span.SetStatus(codes.Ok, "")

	logger.Debug().
		Int("imports", imp.Len()).
		Int("manifest", man.Len()).
		Int("warnings", len(res.Warnings)).
		Dur("duration", s.BuildDuration).
		Msg("version snapshot built")
	return s, nil
}

// debugRequirements prefers the direct requirements of go.mod and falls
// back to the configured requirement list.
func (a *auditor) debugRequirements() []string {
	if !manifest.Frozen(a.config.workDir) {
		if reqs, err := manifest.DeclaredRequirements(filepath.Join(a.config.workDir, "go.mod")); err == nil {
			return reqs
		}
	}
	return a.config.requirements
}

// Versions implements Auditor.
func (a *auditor) Versions(ctx context.Context) (map[string]string, error) {
	s, err := a.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Versions(), nil
}

// Report implements Auditor.
func (a *auditor) Report(ctx context.Context, showPaths, debug bool) (string, error) {
	s, err := a.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return s.Report(showPaths, debug), nil
}

// Warnings implements Auditor.
func (a *auditor) Warnings(ctx context.Context) ([]reconcile.Warning, error) {
	s, err := a.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return append([]reconcile.Warning(nil), s.Result.Warnings...), nil
}
