package loader

import (
	"context"
	"debug/buildinfo"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/agentstation/vercheck/internal/modcache"
	"github.com/agentstation/vercheck/pkg/errors"
)

// MainModule describes the main module of an inspected binary.
type MainModule struct {
	Path      string
	Version   string
	GoVersion string
	Revision  string // vcs.revision build setting
	Modified  bool   // vcs.modified build setting
	VCS       string // vcs build setting, "git" when built from a git checkout
}

// BuildInfoLoader loads modules from the build information embedded in a
// Go binary.
type BuildInfoLoader struct {
	info    *debug.BuildInfo
	workDir string
	deps    map[string]*debug.Module
}

// NewBuildInfoLoader inspects the running binary. workDir is used to resolve
// relative replace directives and as the main module's directory.
func NewBuildInfoLoader(workDir string) (*BuildInfoLoader, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.NewResourceError("read", "build info", "", errors.New("binary was built without module support"))
	}
	return FromBuildInfo(info, workDir), nil
}

// NewFileLoader inspects the Go binary at path.
func NewFileLoader(path, workDir string) (*BuildInfoLoader, error) {
	info, err := buildinfo.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return FromBuildInfo(info, workDir), nil
}

// FromBuildInfo wraps already decoded build information.
func FromBuildInfo(info *debug.BuildInfo, workDir string) *BuildInfoLoader {
	l := &BuildInfoLoader{
		info:    info,
		workDir: workDir,
		deps:    make(map[string]*debug.Module, len(info.Deps)),
	}
	for _, dep := range info.Deps {
		if _, ok := l.deps[dep.Path]; !ok {
			l.deps[dep.Path] = dep
		}
	}
	return l
}

// Load implements Loader.
func (l *BuildInfoLoader) Load(ctx context.Context, key string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return Module{}, err
	}
	if key == l.info.Main.Path && key != "" {
		return Module{
			Path:    key,
			Version: l.info.Main.Version,
			Dir:     l.workDir,
		}, nil
	}
	dep, ok := l.deps[key]
	if !ok {
		return Module{}, NewLoadError(key, "module is not linked into "+l.binaryName())
	}
	return l.resolve(dep), nil
}

// resolve applies a replace directive; the replacement's version and
// location win over the original requirement.
func (l *BuildInfoLoader) resolve(dep *debug.Module) Module {
	mod := Module{Path: dep.Path, Version: dep.Version}
	r := dep.Replace
	if r == nil {
		mod.Dir = modcache.Dir(dep.Path, dep.Version)
		return mod
	}
	if r.Version == "" {
		dir := r.Path
		if !filepath.IsAbs(dir) && l.workDir != "" {
			dir = filepath.Join(l.workDir, dir)
		}
		mod.Version = ""
		mod.Dir = dir
		mod.Comment = "replaced by " + r.Path
		return mod
	}
	mod.Version = r.Version
	mod.Dir = modcache.Dir(r.Path, r.Version)
	mod.Comment = "replaced by " + r.Path + "@" + r.Version
	return mod
}

// MainModule returns the main module and its VCS build settings.
func (l *BuildInfoLoader) MainModule() MainModule {
	m := MainModule{
		Path:      l.info.Main.Path,
		Version:   l.info.Main.Version,
		GoVersion: strings.TrimPrefix(l.info.GoVersion, "go"),
	}
	for _, s := range l.info.Settings {
		switch s.Key {
		case "vcs":
			m.VCS = s.Value
		case "vcs.revision":
			m.Revision = s.Value
		case "vcs.modified":
			m.Modified = s.Value == "true"
		}
	}
	return m
}

// Deps lists the linked dependency paths in build-info order.
func (l *BuildInfoLoader) Deps() []string {
	paths := make([]string, 0, len(l.info.Deps))
	seen := make(map[string]bool, len(l.info.Deps))
	for _, dep := range l.info.Deps {
		if seen[dep.Path] {
			continue
		}
		seen[dep.Path] = true
		paths = append(paths, dep.Path)
	}
	return paths
}

// GoFlags returns the build settings recorded for -tags, -ldflags and
// friends, formatted as key=value pairs.
func (l *BuildInfoLoader) GoFlags() []string {
	var flags []string
	for _, s := range l.info.Settings {
		if strings.HasPrefix(s.Key, "-") {
			flags = append(flags, s.Key+"="+s.Value)
		}
	}
	return flags
}

func (l *BuildInfoLoader) binaryName() string {
	if l.info.Path != "" {
		return l.info.Path
	}
	return "this binary"
}
