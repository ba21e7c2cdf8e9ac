package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vercheck"
	"github.com/agentstation/vercheck/internal/declared"
	"github.com/agentstation/vercheck/internal/loader"
	"github.com/agentstation/vercheck/internal/manifest"
	"github.com/agentstation/vercheck/pkg/logging"
)

func testConfig() *Config {
	return &Config{Resolver: ResolverNone, LogFormat: "json", LogOutput: "stderr"}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	isolate(t)
	a, err := New("1.2.3", "abc123", "2026-10-18", "test", append([]Option{WithConfig(testConfig())}, opts...)...)
	require.NoError(t, err)
	return a
}

func staticAuditor(t *testing.T) vercheck.Auditor {
	t.Helper()
	aud, err := vercheck.New(
		vercheck.WithLoader(loader.NewStaticLoader(loader.Module{Path: "example.com/foo", Version: "v1.0.0"})),
		vercheck.WithResolver(manifest.None),
		vercheck.WithDeclared(&declared.Config{Packages: []declared.Package{{Name: "example.com/foo", Module: "example.com/foo"}}}),
		vercheck.WithWorkDir(t.TempDir()),
		vercheck.WithNoiseFilter(logging.NewNoiseFilter()),
	)
	require.NoError(t, err)
	return aud
}

func execute(t *testing.T, a *App, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := a.createRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestAppMetadata(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, "1.2.3", a.Version())
	assert.Equal(t, "abc123", a.Commit())
	assert.Equal(t, "2026-10-18", a.Date())
	assert.Equal(t, "test", a.BuiltBy())
	assert.NotNil(t, a.Logger())
	assert.Equal(t, ResolverNone, a.Config().Resolver)
}

func TestWithConfigValidates(t *testing.T) {
	isolate(t)
	_, err := New("dev", "", "", "", WithConfig(&Config{Resolver: "pip"}))
	assert.Error(t, err)
}

func TestExecuteReport(t *testing.T) {
	a := newTestApp(t, WithAuditor(staticAuditor(t)))

	out, _, err := execute(t, a, "report")
	require.NoError(t, err)
	assert.Equal(t, "example.com/foo: v1.0.0\n", out)
}

func TestExecuteVersion(t *testing.T) {
	a := newTestApp(t)

	_, errOut, err := execute(t, a, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "vercheck 1.2.3")
	assert.Contains(t, errOut, "commit:   abc123")
}

func TestExecuteMarkdownAlias(t *testing.T) {
	a := newTestApp(t, WithAuditor(staticAuditor(t)))

	out, _, err := execute(t, a, "versions", "-o", "md")
	require.NoError(t, err)
	assert.Equal(t, "markdown", a.OutputFormat())
	assert.Contains(t, out, "example.com/foo")
	assert.Contains(t, out, "|")
}

func TestExecuteManPage(t *testing.T) {
	a := newTestApp(t)

	out, _, err := execute(t, a, "man")
	require.NoError(t, err)
	assert.Contains(t, out, "VERCHECK")
	assert.Contains(t, out, "vercheck-check")
}

func TestExecuteRejectsBadFlags(t *testing.T) {
	a := newTestApp(t)

	_, _, err := execute(t, a, "--resolver", "pip", "version")
	assert.Error(t, err)

	a = newTestApp(t)
	_, _, err = execute(t, a, "--format", "xml", "version")
	assert.Error(t, err)
}

func TestConfigFlagMergesFile(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "vercheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolver: modfile\ndeps_file: deps.yaml\n"), 0o644))

	_, _, err := execute(t, a, "--config", path, "--resolver", "none", "version")
	require.NoError(t, err)
	assert.Equal(t, ResolverNone, a.Config().Resolver)
	assert.Equal(t, "deps.yaml", a.Config().DepsFile)
	assert.Equal(t, path, a.Config().ConfigFile)
}

func TestAuditorIsCreatedOnce(t *testing.T) {
	a := newTestApp(t)
	a.config.WorkDir = t.TempDir()

	var wg sync.WaitGroup
	auditors := make([]vercheck.Auditor, 8)
	for i := range auditors {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			aud, err := a.Auditor()
			assert.NoError(t, err)
			auditors[i] = aud
		}(i)
	}
	wg.Wait()
	for _, aud := range auditors {
		assert.Same(t, auditors[0], aud)
	}
}

func TestAuditorFromDepsFile(t *testing.T) {
	dir := t.TempDir()
	deps := filepath.Join(dir, "deps.yaml")
	require.NoError(t, os.WriteFile(deps, []byte("packages:\n  - {name: testify, module: github.com/stretchr/testify}\n  - {name: go, probe: runtime}\n"), 0o644))

	a := newTestApp(t)
	a.config.DepsFile = deps
	a.config.WorkDir = dir

	aud, err := a.Auditor()
	require.NoError(t, err)
	versions, err := aud.Versions(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, versions["testify"])
	assert.NotEqual(t, "unknown", versions["testify"])
	assert.Contains(t, versions, "go")
}

func TestAuditorOptionErrors(t *testing.T) {
	a := newTestApp(t)
	a.config.Binary = filepath.Join(t.TempDir(), "missing-binary")
	_, err := a.Auditor()
	assert.Error(t, err)

	a = newTestApp(t)
	a.config.DepsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = a.Auditor()
	assert.Error(t, err)
}
