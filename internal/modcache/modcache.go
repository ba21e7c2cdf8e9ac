// Package modcache locates modules inside the Go module cache.
package modcache

import (
	"os"
	"path/filepath"

	"golang.org/x/mod/module"
)

// Root returns the module cache directory: GOMODCACHE when set, else the
// first GOPATH entry plus pkg/mod, else $HOME/go/pkg/mod.
func Root() string {
	if dir := os.Getenv("GOMODCACHE"); dir != "" {
		return dir
	}
	if gopath := GOPATH(); len(gopath) > 0 {
		return filepath.Join(gopath[0], "pkg", "mod")
	}
	return ""
}

// GOPATH returns the GOPATH entries, defaulting to $HOME/go.
func GOPATH() []string {
	if env := os.Getenv("GOPATH"); env != "" {
		var entries []string
		for _, p := range filepath.SplitList(env) {
			if p != "" {
				entries = append(entries, p)
			}
		}
		if len(entries) > 0 {
			return entries
		}
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}
	return []string{filepath.Join(home, "go")}
}

// Dir returns the directory a module version is extracted to. It returns the
// empty string when the path or version cannot be escaped, or when the
// cache root is unknown.
func Dir(path, version string) string {
	root := Root()
	if root == "" || version == "" {
		return ""
	}
	ep, err := module.EscapePath(path)
	if err != nil {
		return ""
	}
	ev, err := module.EscapeVersion(version)
	if err != nil {
		return ""
	}
	return filepath.Join(root, filepath.FromSlash(ep)+"@"+ev)
}

// SearchPath lists the directories modules are looked up in, in lookup
// order: the work dir, the module cache root and every GOPATH entry.
func SearchPath(workDir string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	add(workDir)
	add(Root())
	for _, p := range GOPATH() {
		add(p)
	}
	return out
}
