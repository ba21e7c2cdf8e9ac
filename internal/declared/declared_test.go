package declared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vercheck/pkg/errors"
)

const sample = `host: vercheck
packages:
  - {name: vercheck, module: github.com/agentstation/vercheck}
  - {name: github.com/rs/zerolog, module: github.com/rs/zerolog}
  - {name: go, probe: runtime}
  - {name: platform, probe: platform}
requirements: [github.com/rs/zerolog]
not_import_versionable: [github.com/foo/noversion]
ignorable: [golang.org/x/sys]
renames:
  setuptools: {manifest: distribute, tag: distribute}
noise:
  persistent: ["(?i)deprecated"]
  scoped: ["^init:"]
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vercheck", cfg.Host)
	require.Len(t, cfg.Packages, 4)
	assert.Equal(t, Package{Name: "go", Probe: ProbeRuntime}, cfg.Packages[2])
	assert.Equal(t, []string{"github.com/rs/zerolog"}, cfg.Requirements)
	assert.Equal(t, []string{"github.com/foo/noversion"}, cfg.NotImportVersionable)
	assert.Equal(t, []string{"golang.org/x/sys"}, cfg.Ignorable)
	assert.Equal(t, Rename{Manifest: "distribute", Tag: "distribute"}, cfg.Renames["setuptools"])
	assert.Equal(t, []string{"(?i)deprecated"}, cfg.Noise.Persistent)
	assert.Equal(t, []string{"^init:"}, cfg.Noise.Scoped)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown key":     "hosts: x\n",
		"both set":        "packages:\n  - {name: a, module: a, probe: runtime}\n",
		"neither set":     "packages:\n  - {name: a}\n",
		"unknown probe":   "packages:\n  - {name: a, probe: kernel}\n",
		"empty name":      "packages:\n  - {name: '', module: a}\n",
		"rename no field": "renames:\n  a: {tag: b}\n",
		"bad ignorable":   "ignorable: ['example.com/[']\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), "test.yaml")
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, cfg.Packages)
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("packages: [\n"), "bad.yaml")
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestPackageValidate(t *testing.T) {
	assert.NoError(t, Package{Name: "a", Module: "a"}.Validate())
	assert.NoError(t, Package{Name: "go", Probe: ProbeRuntime}.Validate())
	assert.Error(t, Package{Module: "a"}.Validate())
	assert.Error(t, Package{Name: "a"}.Validate())
	assert.Error(t, Package{Name: "a", Module: "a", Probe: ProbeCrypto}.Validate())
	assert.Error(t, Package{Name: "a", Probe: "kernel"}.Validate())

	err := Validate([]Package{{Name: "a", Module: "a"}, {Name: "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package 1")
	assert.True(t, errors.IsValidationError(err))
}

func TestDefault(t *testing.T) {
	cfg := Default("github.com/agentstation/vercheck", []string{"github.com/rs/zerolog", "github.com/spf13/cobra"})

	names := make([]string, len(cfg.Packages))
	for i, p := range cfg.Packages {
		names[i] = p.Name
	}
	assert.Equal(t, []string{
		"github.com/agentstation/vercheck",
		"github.com/rs/zerolog",
		"github.com/spf13/cobra",
		"go",
		"platform",
		"crypto",
	}, names)
	assert.Equal(t, []string{"github.com/rs/zerolog", "github.com/spf13/cobra"}, cfg.Requirements)
	assert.NoError(t, Validate(cfg.Packages))

	noHost := Default("", nil)
	assert.Len(t, noHost.Packages, 3)
}
