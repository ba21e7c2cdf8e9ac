// Package manifest builds the manifest catalog: the versions the module
// manifest says the program's requirements resolve to.
package manifest

import (
	"context"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/logging"
)

const tracerName = "github.com/agentstation/vercheck/internal/manifest"

// Resolver resolves requirements against a module manifest.
type Resolver interface {
	Resolve(ctx context.Context, requirements []string) (*catalogs.ManifestCatalog, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, requirements []string) (*catalogs.ManifestCatalog, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, requirements []string) (*catalogs.ManifestCatalog, error) {
	return f(ctx, requirements)
}

// None is a Resolver that never finds a manifest.
var None Resolver = ResolverFunc(func(context.Context, []string) (*catalogs.ManifestCatalog, error) {
	return catalogs.NewManifestCatalog(), nil
})

// Frozen reports whether workDir has no go.mod, as is the case for a binary
// deployed without its source.
func Frozen(workDir string) bool {
	if workDir == "" {
		return true
	}
	info, err := os.Stat(filepath.Join(workDir, "go.mod"))
	return err != nil || info.IsDir()
}

// Build resolves requirements with r. A frozen work dir or a nil resolver
// yields an empty catalog, as does a resolver error: a missing manifest
// disables cross-checking but never reporting. The error is returned
// alongside the empty catalog for callers that want to log it.
func Build(ctx context.Context, r Resolver, workDir string, requirements []string) (*catalogs.ManifestCatalog, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "manifest.Build")
	defer span.End()

	logger := logging.FromContext(ctx).With().Str("component", "manifest").Logger()

	if r == nil || Frozen(workDir) {
		logger.Debug().Str("work_dir", workDir).Msg("no manifest available, cross-checking disabled")
		span.SetAttributes(attribute.Bool("vercheck.manifest.frozen", true))
		return catalogs.NewManifestCatalog(), nil
	}

	cat, err := r.Resolve(ctx, requirements)
	if err != nil {
		logger.Warn().Err(err).Msg("manifest resolution failed, cross-checking disabled")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return catalogs.NewManifestCatalog(), err
	}
	if cat == nil {
		cat = catalogs.NewManifestCatalog()
	}
	span.SetAttributes(attribute.Int("vercheck.manifest.entries", cat.Len()))
	span.SetStatus(codes.Ok, "")
	return cat, nil
}
