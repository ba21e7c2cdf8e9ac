package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/errors"
	"github.com/agentstation/vercheck/pkg/reconcile"
)

const goListOutput = `{
	"Path": "example.com/app",
	"Main": true,
	"Dir": "/src/app",
	"GoMod": "/src/app/go.mod"
}
{
	"Path": "github.com/BurntSushi/toml",
	"Version": "v1.4.0",
	"Dir": "/cache/github.com/!burnt!sushi/toml@v1.4.0"
}
{
	"Path": "github.com/spf13/cobra",
	"Version": "v1.9.1",
	"Replace": {
		"Path": "github.com/fork/cobra",
		"Version": "v1.9.2",
		"Dir": "/cache/github.com/fork/cobra@v1.9.2"
	},
	"Dir": "/cache/github.com/fork/cobra@v1.9.2"
}
{
	"Path": "example.com/local",
	"Version": "v0.0.0-00010101000000-000000000000",
	"Replace": {
		"Path": "../local",
		"Dir": "/src/local"
	},
	"Dir": "/src/local"
}
{
	"Path": "example.com/bare"
}
{
	"Path": "example.com/not/in/graph",
	"Error": {
		"Err": "module example.com/not/in/graph: not a known dependency"
	}
}
`

const goMod = `module example.com/app

go 1.24

require (
	github.com/BurntSushi/toml v1.4.0
	github.com/spf13/cobra v1.9.1
	example.com/local v0.0.0-00010101000000-000000000000
	golang.org/x/sys v0.35.0 // indirect
)

replace github.com/spf13/cobra v1.9.1 => github.com/fork/cobra v1.9.2

replace example.com/local => ../local
`

func writeGoMod(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(content), 0o644))
	return dir
}

func TestDecodeList(t *testing.T) {
	cat, err := decodeList(context.Background(), []byte(goListOutput))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"example.com/bare",
		"example.com/local",
		"github.com/burntsushi/toml",
		"github.com/spf13/cobra",
	}, cat.Names(), "main module and unknown modules are skipped, keys are lowercased")

	_, ok := cat.Lookup("example.com/not/in/graph")
	assert.False(t, ok)

	toml, _ := cat.Lookup("github.com/BurntSushi/toml")
	assert.Equal(t, catalogs.Record{Version: "v1.4.0", Location: "/cache/github.com/!burnt!sushi/toml@v1.4.0"}, toml)

	cobra, _ := cat.Lookup("github.com/spf13/cobra")
	assert.Equal(t, "v1.9.2", cobra.Version)
	assert.Equal(t, "/cache/github.com/fork/cobra@v1.9.2", cobra.Location)

	local, _ := cat.Lookup("example.com/local")
	assert.Equal(t, "v0.0.0-00010101000000-000000000000", local.Version)
	assert.Equal(t, "/src/local", local.Location)

	bare, _ := cat.Lookup("example.com/bare")
	assert.Equal(t, catalogs.UnknownVersion, bare.Version)
}

func TestDecodeListMalformed(t *testing.T) {
	_, err := decodeList(context.Background(), []byte(`{"Path": "x"} {`))
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestGoListResolver(t *testing.T) {
	var gotDir string
	var gotArgs []string
	r := &GoListResolver{
		WorkDir: "/src/app",
		run: func(_ context.Context, dir string, _ []string, args ...string) ([]byte, error) {
			gotDir, gotArgs = dir, args
			return []byte(goListOutput), nil
		},
	}

	cat, err := r.Resolve(context.Background(), []string{"github.com/BurntSushi/toml", "github.com/spf13/cobra"})
	require.NoError(t, err)
	assert.Equal(t, "/src/app", gotDir)
	assert.Equal(t, []string{"list", "-e", "-m", "-json", "github.com/BurntSushi/toml", "github.com/spf13/cobra"}, gotArgs)
	assert.Equal(t, 4, cat.Len())

	_, err = r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "-e", "-m", "-json", "all"}, gotArgs)
}

func TestGoListResolverUnknownModuleKeepsOthers(t *testing.T) {
	r := &GoListResolver{
		run: func(context.Context, string, []string, ...string) ([]byte, error) {
			return []byte(goListOutput), nil
		},
	}
	cat, err := Build(context.Background(), r, writeGoMod(t, goMod),
		[]string{"github.com/BurntSushi/toml", "example.com/not/in/graph"})
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())

	imp := catalogs.NewImportCatalog()
	imp.Add(catalogs.Loaded("example.com/not/in/graph", "v1.0.0", "/x", ""))
	res := reconcile.Reconcile(imp, cat, reconcile.Options{})
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, reconcile.KindNotInManifest, res.Warnings[0].Kind)
}

func TestGoListResolverProcessError(t *testing.T) {
	r := &GoListResolver{
		run: func(context.Context, string, []string, ...string) ([]byte, error) {
			return nil, errors.NewProcessError("resolve manifest", "go list", "no required module provides package", errors.New("exit status 1"))
		},
	}
	_, err := r.Resolve(context.Background(), nil)
	var procErr *errors.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Contains(t, procErr.Output, "no required module")
}

func TestModFileResolver(t *testing.T) {
	t.Setenv("GOMODCACHE", "/cache")
	dir := writeGoMod(t, goMod)

	cat, err := NewModFileResolver(dir).Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())

	toml, _ := cat.Lookup("github.com/burntsushi/toml")
	assert.Equal(t, "v1.4.0", toml.Version)
	assert.Equal(t, filepath.Join("/cache", "github.com", "!burnt!sushi", "toml@v1.4.0"), toml.Location)

	cobra, _ := cat.Lookup("github.com/spf13/cobra")
	assert.Equal(t, "v1.9.2", cobra.Version)
	assert.Equal(t, filepath.Join("/cache", "github.com", "fork", "cobra@v1.9.2"), cobra.Location)

	local, _ := cat.Lookup("example.com/local")
	assert.Equal(t, filepath.Join(filepath.Dir(dir), "local"), local.Location)

	filtered, err := NewModFileResolver(dir).Resolve(context.Background(), []string{"github.com/spf13/cobra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"github.com/spf13/cobra"}, filtered.Names())
}

func TestModFileResolverErrors(t *testing.T) {
	_, err := NewModFileResolver(t.TempDir()).Resolve(context.Background(), nil)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	dir := writeGoMod(t, "module\nrequire (\n")
	_, err = NewModFileResolver(dir).Resolve(context.Background(), nil)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestDeclaredRequirements(t *testing.T) {
	dir := writeGoMod(t, goMod)
	reqs, err := DeclaredRequirements(filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"github.com/BurntSushi/toml@v1.4.0",
		"github.com/spf13/cobra@v1.9.1",
		"example.com/local@v0.0.0-00010101000000-000000000000",
	}, reqs)
}

func TestFrozen(t *testing.T) {
	assert.True(t, Frozen(""))
	assert.True(t, Frozen(t.TempDir()))
	assert.False(t, Frozen(writeGoMod(t, goMod)))
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	dir := writeGoMod(t, goMod)

	resolved := ResolverFunc(func(_ context.Context, reqs []string) (*catalogs.ManifestCatalog, error) {
		cat := catalogs.NewManifestCatalog()
		for _, r := range reqs {
			cat.Set(r, catalogs.Record{Version: "1.0"})
		}
		return cat, nil
	})

	t.Run("resolves", func(t *testing.T) {
		cat, err := Build(ctx, resolved, dir, []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, 2, cat.Len())
	})

	t.Run("frozen", func(t *testing.T) {
		cat, err := Build(ctx, resolved, t.TempDir(), []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, 0, cat.Len())
	})

	t.Run("nil resolver", func(t *testing.T) {
		cat, err := Build(ctx, nil, dir, []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, 0, cat.Len())
	})

	t.Run("none", func(t *testing.T) {
		cat, err := Build(ctx, None, dir, []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, 0, cat.Len())
	})

	t.Run("resolver error degrades to empty", func(t *testing.T) {
		boom := errors.New("boom")
		cat, err := Build(ctx, ResolverFunc(func(context.Context, []string) (*catalogs.ManifestCatalog, error) {
			return nil, boom
		}), dir, nil)
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, cat)
		assert.Equal(t, 0, cat.Len())
	})
}
