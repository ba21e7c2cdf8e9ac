// Package report renders catalogs and warnings as text.
package report

import (
	"fmt"
	"strings"

	"github.com/agentstation/vercheck/pkg/catalogs"
)

// Options controls Format.
type Options struct {
	ShowPaths bool
	Debug     bool

	// Shown in debug mode only.
	GoFlags      string
	Requirements []string
	SearchPath   []string
}

// Format renders one line per entry, "name: version [comment] (location)",
// followed by a blank line and the warnings when there are any. The
// location is shown only with ShowPaths; absent values render as None.
// Debug appends GOFLAGS, the declared requirements and the search path.
func Format(entries []catalogs.Entry, warnings []string, opts Options) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(Line(e, opts.ShowPaths))
		b.WriteByte('\n')
	}

	if len(warnings) > 0 {
		b.WriteByte('\n')
		for _, w := range warnings {
			b.WriteString(w)
			b.WriteByte('\n')
		}
	}
	if opts.Debug {
		writeDebug(&b, opts)
	}
	return b.String()
}

// Line renders a single entry.
func Line(e catalogs.Entry, showPaths bool) string {
	line := e.Name + ": " + orNone(e.Version)
	if c := comment(e); c != "" {
		line += " [" + c + "]"
	}
	if showPaths {
		line += " (" + orNone(e.Location) + ")"
	}
	return line
}

func writeDebug(b *strings.Builder, opts Options) {
	fmt.Fprintf(b, "\nFor debugging purposes, GOFLAGS was\n  %q\n", opts.GoFlags)
	fmt.Fprintf(b, "the declared requirements were\n  %q\n", opts.Requirements)
	fmt.Fprintf(b, "the module search path was\n  %s\n", strings.Join(opts.SearchPath, "\n  "))
}

func comment(e catalogs.Entry) string {
	if e.Failure != nil {
		return e.Failure.String()
	}
	return e.Comment
}

func orNone(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}

// Versions maps each entry name to its version; failed entries map to the
// empty string.
func Versions(entries []catalogs.Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Name] = e.VersionString()
	}
	return out
}
