package reconcile

import (
	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/constants"
)

// Rename says that a package is published in the manifest under another
// name. The pair is consistent when both resolve to the same location and
// the import entry's comment equals Tag.
type Rename struct {
	Manifest string
	Tag      string
}

// Options tunes which entries are checked and which disagreements are expected.
type Options struct {
	// NotCheckable names import entries that have no manifest counterpart,
	// such as the host program and the probes. Entries in this and the next
	// two lists may be glob patterns (golang.org/x/*) or wildcards
	// (golang.org/x/...).
	NotCheckable []string

	// NotImportVersionable names dependencies known to report no version
	// when loaded.
	NotImportVersionable []string

	// Ignorable names manifest entries that are expected to have no
	// import counterpart.
	Ignorable []string

	// Renames maps an import name to the name the manifest knows it by.
	Renames map[string]Rename
}

// DefaultRenames holds the historical setuptools/distribute pairing.
func DefaultRenames() map[string]Rename {
	return map[string]Rename{
		"setuptools": {Manifest: "distribute", Tag: "distribute"},
	}
}

// DefaultOptions returns options that skip host and the built-in probes.
func DefaultOptions(host string) Options {
	return Options{
		NotCheckable: []string{host, constants.RuntimeEntry, constants.PlatformEntry, constants.CryptoEntry},
		Renames:      DefaultRenames(),
	}
}

// set is a case-insensitive string set.
type set map[string]struct{}

func (s set) has(name string) bool {
	_, ok := s[catalogs.Key(name)]
	return ok
}

func (o Options) rename(name string) (Rename, bool) {
	for k, r := range o.Renames {
		if catalogs.Key(k) == catalogs.Key(name) {
			return r, true
		}
	}
	return Rename{}, false
}
