package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/vercheck/pkg/errors"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"VERCHECK_CONFIG", "VERCHECK_RESOLVER", "VERCHECK_DEPS_FILE", "VERCHECK_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ResolverGoList, config.Resolver)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
	assert.Empty(t, config.LogLevel)
	assert.Empty(t, config.DepsFile)
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("VERCHECK_RESOLVER", "ModFile")
	t.Setenv("VERCHECK_DEPS_FILE", "/etc/vercheck/deps.yaml")
	t.Setenv("VERCHECK_VERBOSE", "true")
	t.Setenv("LOG_LEVEL", "trace")

	config, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ResolverModFile, config.Resolver)
	assert.Equal(t, "/etc/vercheck/deps.yaml", config.DepsFile)
	assert.True(t, config.Verbose)
	assert.Equal(t, "trace", config.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "vercheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolver: none\ndeps_file: deps.yaml\nmetrics_file: /tmp/v.prom\n"), 0o644))
	t.Setenv("VERCHECK_CONFIG", path)

	config, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ResolverNone, config.Resolver)
	assert.Equal(t, "deps.yaml", config.DepsFile)
	assert.Equal(t, "/tmp/v.prom", config.MetricsFile)
	assert.Equal(t, path, config.ConfigFile)
}

func TestLoadConfigErrors(t *testing.T) {
	isolate(t)

	t.Setenv("VERCHECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := loadConfig(viper.New())
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	t.Setenv("VERCHECK_CONFIG", "")
	t.Setenv("VERCHECK_RESOLVER", "pip")
	_, err = loadConfig(viper.New())
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "resolver", cfgErr.Component)
}

func TestConfigMerge(t *testing.T) {
	c := &Config{Resolver: ResolverNone, DepsFile: "flag.yaml", Verbose: true}
	file := &Config{Resolver: ResolverModFile, DepsFile: "file.yaml", Binary: "./bin/app", MetricsFile: "m.prom", LogFormat: "json", LogOutput: "stdout"}

	changed := map[string]bool{"resolver": true, "verbose": true}
	c.Merge(file, func(flag string) bool { return changed[flag] })

	assert.Equal(t, ResolverNone, c.Resolver)
	assert.Equal(t, "file.yaml", c.DepsFile)
	assert.Equal(t, "./bin/app", c.Binary)
	assert.Equal(t, "m.prom", c.MetricsFile)
	assert.True(t, c.Verbose)
	assert.Equal(t, "json", c.LogFormat)
}
