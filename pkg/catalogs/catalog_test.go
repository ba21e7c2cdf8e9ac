package catalogs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vercheck/pkg/catalogs"
)

func TestImportCatalogOrderAndUniqueness(t *testing.T) {
	c := catalogs.NewImportCatalog()
	assert.True(t, c.Add(catalogs.Loaded("vercheck", "1.0", "/src", "main: v1.0")))
	assert.True(t, c.Add(catalogs.Loaded("github.com/rs/zerolog", "v1.34.0", "/mod/zerolog", "")))
	assert.True(t, c.Add(catalogs.Loaded("go", "1.24.6", "", "")))
	assert.False(t, c.Add(catalogs.Loaded("github.com/rs/zerolog", "v0.1.0", "/other", "")))

	assert.Equal(t, []string{"vercheck", "github.com/rs/zerolog", "go"}, c.Names())
	assert.Equal(t, 3, c.Len())

	e, ok := c.Get("github.com/rs/zerolog")
	require.True(t, ok)
	assert.Equal(t, "v1.34.0", e.VersionString())
	assert.Equal(t, "/mod/zerolog", e.LocationString())

	goEntry, _ := c.Get("go")
	assert.Nil(t, goEntry.Location)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	entries := c.Entries()
	entries[0].Name = "changed"
	assert.Equal(t, "vercheck", c.Names()[0])
}

func TestFailedEntry(t *testing.T) {
	e := catalogs.Failed("github.com/foo/bar", catalogs.Failure{
		Class:   "loader.LoadError",
		Message: "module not linked",
		Frame:   "loader.go:42 loader.(*BuildInfoLoader).Load",
	})
	assert.True(t, e.IsFailed())
	assert.Nil(t, e.Version)
	assert.Nil(t, e.Location)
	assert.Empty(t, e.VersionString())
	assert.Equal(t, "loader.LoadError: module not linked at loader.go:42 loader.(*BuildInfoLoader).Load", e.Failure.String())

	bare := catalogs.Failure{Class: "X", Message: "y"}
	assert.Equal(t, "X: y", bare.String())
	assert.False(t, catalogs.Loaded("a", catalogs.UnknownVersion, "", "").IsFailed())
}

func TestManifestCatalogIsCaseInsensitive(t *testing.T) {
	m := catalogs.NewManifestCatalog()
	m.Set("GitHub.com/BurntSushi/TOML", catalogs.Record{Version: "v1.4.0", Location: "/mod/toml"})
	m.Set("github.com/rs/zerolog", catalogs.Record{Version: "v1.34.0"})

	r, ok := m.Lookup("github.com/burntsushi/toml")
	require.True(t, ok)
	assert.Equal(t, "v1.4.0", r.Version)

	_, ok = m.Lookup("GITHUB.COM/RS/ZEROLOG")
	assert.True(t, ok)

	assert.Equal(t, []string{"github.com/burntsushi/toml", "github.com/rs/zerolog"}, m.Names())
	assert.Equal(t, 2, m.Len())

	var empty *catalogs.ManifestCatalog
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Names())
	_, ok = empty.Lookup("x")
	assert.False(t, ok)
}

func TestNormalizePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	assert.Equal(t, catalogs.NormalizePath(target), catalogs.NormalizePath(link))
	assert.True(t, catalogs.SameLocation(target+string(filepath.Separator)+".", link))
	assert.Equal(t, catalogs.NormalizePath(target), catalogs.InstallRoot(link))
	assert.Empty(t, catalogs.NormalizePath(""))
	assert.True(t, catalogs.SameLocation("", ""))

	missing := filepath.Join(dir, "missing", "..", "missing2")
	assert.Equal(t, filepath.Join(catalogs.NormalizePath(dir), "missing2"), catalogs.NormalizePath(missing))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "github.com/azure/azure-sdk-for-go", catalogs.Key("github.com/Azure/azure-sdk-for-go"))
}
