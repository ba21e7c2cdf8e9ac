package manifest

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/agentstation/vercheck/internal/modcache"
	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/errors"
)

// ModFileResolver resolves requirements by reading go.mod directly. It needs
// no go toolchain but only sees the requirements go.mod lists, without
// minimal version selection across the module graph.
type ModFileResolver struct {
	WorkDir string
}

// NewModFileResolver returns a resolver reading workDir/go.mod.
func NewModFileResolver(workDir string) *ModFileResolver {
	return &ModFileResolver{WorkDir: workDir}
}

// Resolve implements Resolver. When requirements is empty every requirement
// in go.mod is recorded, otherwise only the named ones.
func (r *ModFileResolver) Resolve(ctx context.Context, requirements []string) (*catalogs.ManifestCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := parseGoMod(filepath.Join(r.WorkDir, "go.mod"))
	if err != nil {
		return nil, err
	}

	var wanted map[string]bool
	if len(requirements) > 0 {
		wanted = make(map[string]bool, len(requirements))
		for _, req := range requirements {
			wanted[req] = true
		}
	}

	replacements := make(map[string]*modfile.Replace, len(f.Replace))
	for _, rep := range f.Replace {
		// a versioned replace beats a wildcard one for the same path
		if prev, ok := replacements[rep.Old.Path]; ok && prev.Old.Version != "" && rep.Old.Version == "" {
			continue
		}
		replacements[rep.Old.Path] = rep
	}

	cat := catalogs.NewManifestCatalog()
	for _, req := range f.Require {
		path, ver := req.Mod.Path, req.Mod.Version
		if wanted != nil && !wanted[path] {
			continue
		}

		dir := modcache.Dir(path, ver)
		if rep, ok := replacements[path]; ok && (rep.Old.Version == "" || rep.Old.Version == ver) {
			if modfile.IsDirectoryPath(rep.New.Path) {
				dir = rep.New.Path
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(r.WorkDir, dir)
				}
			} else {
				ver = rep.New.Version
				dir = modcache.Dir(rep.New.Path, rep.New.Version)
			}
		}
		if ver == "" {
			ver = catalogs.UnknownVersion
		}
		cat.Set(path, catalogs.Record{Version: ver, Location: dir})
	}
	return cat, nil
}

// DeclaredRequirements returns the direct requirements listed in the go.mod
// file at gomod, as path@version.
func DeclaredRequirements(gomod string) ([]string, error) {
	f, err := parseGoMod(gomod)
	if err != nil {
		return nil, err
	}
	var reqs []string
	for _, req := range f.Require {
		if req.Indirect {
			continue
		}
		reqs = append(reqs, req.Mod.Path+"@"+req.Mod.Version)
	}
	return reqs, nil
}

func parseGoMod(path string) (*modfile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, errors.WrapParse("go.mod", path, err)
	}
	return f, nil
}
