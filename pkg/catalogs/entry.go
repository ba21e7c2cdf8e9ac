// Package catalogs holds the two version catalogs vercheck reconciles: the
// import catalog built by loading each dependency, and the manifest catalog
// built by resolving declared requirements against the module registry.
//
// Catalogs are built once and treated as immutable snapshots afterwards.
package catalogs

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownVersion is reported when a dependency was found but carries no
// version metadata. It is distinct from a failed load.
const UnknownVersion = "unknown"

// Failure describes why a dependency could not be loaded.
type Failure struct {
	Class   string `json:"class" yaml:"class"`
	Message string `json:"message" yaml:"message"`
	Frame   string `json:"frame,omitempty" yaml:"frame,omitempty"`
}

// String renders the failure as "Class: message at frame".
func (f Failure) String() string {
	if f.Frame == "" {
		return fmt.Sprintf("%s: %s", f.Class, f.Message)
	}
	return fmt.Sprintf("%s: %s at %s", f.Class, f.Message, f.Frame)
}

// Entry is one row of a catalog. Version and Location are nil when the
// dependency could not be loaded, in which case Failure is set.
type Entry struct {
	Name     string   `json:"name" yaml:"name"`
	Version  *string  `json:"version" yaml:"version"`
	Location *string  `json:"location" yaml:"location"`
	Comment  string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Failure  *Failure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Loaded returns an entry for a dependency that was found. An empty location
// is recorded as nil.
func Loaded(name, version, location, comment string) Entry {
	e := Entry{Name: name, Version: &version, Comment: comment}
	if location != "" {
		e.Location = &location
	}
	return e
}

// Failed returns an entry for a dependency that could not be loaded.
func Failed(name string, f Failure) Entry {
	return Entry{Name: name, Failure: &f}
}

// VersionString returns the version or the empty string.
func (e Entry) VersionString() string {
	if e.Version == nil {
		return ""
	}
	return *e.Version
}

// LocationString returns the location or the empty string.
func (e Entry) LocationString() string {
	if e.Location == nil {
		return ""
	}
	return *e.Location
}

// IsFailed reports whether the entry records a failed load.
func (e Entry) IsFailed() bool {
	return e.Version == nil && e.Location == nil
}

// Record is what the manifest registry reports for one package.
type Record struct {
	Version  string `json:"version" yaml:"version"`
	Location string `json:"location" yaml:"location"`
}

var folder = cases.Lower(language.Und)

// Key returns the case-insensitive lookup key for a package name.
func Key(name string) string {
	return folder.String(name)
}
