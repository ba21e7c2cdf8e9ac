// Package loader inspects the modules linked into a Go binary.
//
// A Loader plays the part of an import statement: it is asked for a module by
// path and either returns the metadata the module reports about itself or a
// *LoadError describing why it could not be found.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/errors"
)

// Loader loads a module by key.
type Loader interface {
	Load(ctx context.Context, key string) (Module, error)
}

// Module is the metadata a loaded module reports about itself.
type Module struct {
	Path    string
	Version string // explicit version, may be empty
	Parts   []int  // numeric version parts, used when Version is empty
	Dir     string // module root directory, may be empty
	Comment string
}

// develVersion is what the toolchain records for modules built from a
// working tree instead of a released version.
const develVersion = "(devel)"

// VersionOf returns the explicit version, else the numeric parts joined with
// dots, else catalogs.UnknownVersion.
func VersionOf(m Module) string {
	if m.Version != "" && m.Version != develVersion {
		return m.Version
	}
	if len(m.Parts) > 0 {
		parts := make([]string, len(m.Parts))
		for i, p := range m.Parts {
			parts[i] = strconv.Itoa(p)
		}
		return strings.Join(parts, ".")
	}
	return catalogs.UnknownVersion
}

// LoadError reports a module that could not be loaded.
type LoadError struct {
	Key    string
	Reason string
	Frame  string // source position that raised the error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load module %q: %s", e.Key, e.Reason)
}

// Is implements errors.Is support
func (e *LoadError) Is(target error) bool {
	return target == errors.ErrNotLoadable
}

// NewLoadError creates a LoadError recording the caller's position.
func NewLoadError(key, reason string) *LoadError {
	return &LoadError{Key: key, Reason: reason, Frame: frame(2)}
}

// frame formats the caller skip levels up as "file.go:line function".
func frame(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	name := ""
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	return fmt.Sprintf("%s:%d %s", filepath.Base(file), line, name)
}

// FrameOf returns the position recorded in err, if err carries one.
func FrameOf(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Frame
	}
	return ""
}
