// Package reconcile compares the import catalog against the manifest catalog
// and classifies every disagreement.
//
// The checks are tuned to stay quiet about benign differences (formatting,
// renamed distributions, packages that cannot report a version) and to speak
// up about a dependency loaded from an unexpected place or at an unexpected
// version.
package reconcile

import (
	"fmt"

	"github.com/agentstation/vercheck/internal/matcher"
	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/constants"
	"github.com/agentstation/vercheck/pkg/errors"
	"github.com/agentstation/vercheck/pkg/version"
)

// Kind classifies a warning.
type Kind string

// Warning kinds.
const (
	KindNotInManifest        Kind = "not_in_manifest"
	KindRenameMismatch       Kind = "rename_mismatch"
	KindImportFailed         Kind = "import_failed"
	KindUnparsableManifest   Kind = "unparsable_manifest_version"
	KindUnknownImportVersion Kind = "unknown_import_version"
	KindUnparsableImport     Kind = "unparsable_import_version"
	KindVersionMismatch      Kind = "version_mismatch"
	KindPackaging            Kind = "packaging"
)

// Kinds lists every warning kind.
func Kinds() []Kind {
	return []Kind{
		KindNotInManifest, KindRenameMismatch, KindImportFailed, KindUnparsableManifest,
		KindUnknownImportVersion, KindUnparsableImport, KindVersionMismatch, KindPackaging,
	}
}

// Warning is one classified disagreement.
type Warning struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Name    string `json:"name" yaml:"name"`
	Message string `json:"message" yaml:"message"`
}

// String returns the message.
func (w Warning) String() string {
	return w.Message
}

// Result holds the warnings in import catalog order and the manifest
// entries that no import accounted for, sorted by name.
type Result struct {
	Warnings []Warning
	Extras   []catalogs.Entry
}

// Messages returns the warning messages.
func (r *Result) Messages() []string {
	msgs := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		msgs[i] = w.Message
	}
	return msgs
}

// CountByKind counts warnings per kind.
func (r *Result) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, w := range r.Warnings {
		counts[w.Kind]++
	}
	return counts
}

// Reconcile checks every import entry against the manifest. An empty
// manifest disables all checks; the result is then empty.
func Reconcile(imports *catalogs.ImportCatalog, manifest *catalogs.ManifestCatalog, opts Options) *Result {
	res := &Result{}
	if manifest.Len() == 0 || imports == nil {
		return res
	}

	r := &reconciler{
		manifest:      manifest,
		opts:          opts,
		notCheckable:  matcher.Lenient(opts.NotCheckable),
		notVersioned:  matcher.Lenient(opts.NotImportVersionable),
		ignorable:     matcher.Lenient(opts.Ignorable),
		importedNames: make(set, imports.Len()),
	}

	for _, e := range imports.Entries() {
		r.importedNames[catalogs.Key(e.Name)] = struct{}{}
	}
	for _, e := range imports.Entries() {
		if r.notCheckable.Match(e.Name) {
			continue
		}
		if w, ok := r.check(e); ok {
			res.Warnings = append(res.Warnings, w)
		}
	}

	for _, name := range manifest.Names() {
		if r.importedNames.has(name) || r.ignorable.Match(name) {
			continue
		}
		rec, _ := manifest.Lookup(name)
		extra := catalogs.Loaded(name, rec.Version, rec.Location, constants.ManifestComment)
		res.Extras = append(res.Extras, extra)
	}
	return res
}

type reconciler struct {
	manifest      *catalogs.ManifestCatalog
	opts          Options
	notCheckable  *matcher.MultiMatcher
	notVersioned  *matcher.MultiMatcher
	ignorable     *matcher.MultiMatcher
	importedNames set
}

// check classifies one entry. A panic while checking is reported as a
// packaging warning for that entry alone.
func (r *reconciler) check(e catalogs.Entry) (w Warning, found bool) {
	defer func() {
		if p := recover(); p != nil {
			w = warn(KindPackaging, e.Name, "Warning: could not reconcile dependency %q: %v", e.Name, p)
			found = true
		}
	}()

	rec, ok := r.manifest.Lookup(e.Name)
	if !ok {
		return r.missing(e)
	}

	if e.IsFailed() {
		return warn(KindImportFailed, e.Name,
			"Warning: dependency %q could not be loaded. The manifest expected version %q from %q. The failure was %s.",
			e.Name, rec.Version, rec.Location, failureText(e)), true
	}

	impVer := e.VersionString()
	if impVer != catalogs.UnknownVersion && impVer == rec.Version {
		return Warning{}, false
	}

	prNorm, err := version.Normalize(rec.Version, e.Name)
	if err != nil {
		if errors.IsUnparsableVersion(err) {
			return Warning{}, false
		}
		return warn(KindUnparsableManifest, e.Name,
			"Warning: version number %q found for dependency %q by the manifest could not be parsed. "+
				"The version found by loading was %q from %s. The manifest expected it at %q. The error was %s: %v",
			rec.Version, e.Name, impVer, quote(e.Location), rec.Location, errors.TypeName(err), err), true
	}

	if impVer == catalogs.UnknownVersion {
		if r.notVersioned.Match(e.Name) {
			return Warning{}, false
		}
		return warn(KindUnknownImportVersion, e.Name,
			"Warning: unexpectedly could not find a version number for dependency %q loaded from %s. "+
				"The manifest expected version %q at %q.",
			e.Name, quote(e.Location), rec.Version, rec.Location), true
	}

	impNorm, err := version.Normalize(impVer, e.Name)
	if err != nil {
		if errors.IsUnparsableVersion(err) {
			return Warning{}, false
		}
		return warn(KindUnparsableImport, e.Name,
			"Warning: version number %q found for dependency %q (loaded from %s) could not be parsed. "+
				"The manifest expected version %q at %q. The error was %s: %v",
			impVer, e.Name, quote(e.Location), rec.Version, rec.Location, errors.TypeName(err), err), true
	}

	if !prNorm.Equal(impNorm) {
		return warn(KindVersionMismatch, e.Name,
			"Warning: dependency %q found to have version number %q (normalized to %q, from %q) by the manifest, "+
				"but version %q (normalized to %q, from %s) by loading.",
			e.Name, rec.Version, prNorm.String(), rec.Location, impVer, impNorm.String(), quote(e.Location)), true
	}
	return Warning{}, false
}

// missing handles an entry the manifest has no record of.
func (r *reconciler) missing(e catalogs.Entry) (Warning, bool) {
	if rn, ok := r.opts.rename(e.Name); ok {
		if rec, ok := r.manifest.Lookup(rn.Manifest); ok {
			if catalogs.SameLocation(rec.Location, e.LocationString()) && e.Location != nil && e.Comment == rn.Tag {
				return Warning{}, false
			}
			comment := e.Comment
			if comment == "" {
				comment = "probably *not* " + rn.Manifest
			}
			return warn(KindRenameMismatch, e.Name,
				"Warning: dependency %q found to be version %q of %q from %q by the manifest, "+
					"but loading %q gave version %s [%s] from %s. A version mismatch is expected, but a location mismatch is not.",
				e.Name, rec.Version, rn.Manifest, rec.Location, e.Name, quote(e.Version), comment, quote(e.Location)), true
		}
	}
	return warn(KindNotInManifest, e.Name,
		"Warning: dependency %q (version %s loaded from %s) was not found by the manifest.",
		e.Name, quote(e.Version), quote(e.Location)), true
}

func warn(kind Kind, name, format string, args ...any) Warning {
	return Warning{Kind: kind, Name: name, Message: fmt.Sprintf(format, args...)}
}

// quote renders an optional string as %q, or None when absent.
func quote(s *string) string {
	if s == nil {
		return "None"
	}
	return fmt.Sprintf("%q", *s)
}

func failureText(e catalogs.Entry) string {
	if e.Failure == nil {
		return "unknown"
	}
	return e.Failure.String()
}
