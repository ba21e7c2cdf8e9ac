package app

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/vercheck/pkg/constants"
	vcerrors "github.com/agentstation/vercheck/pkg/errors"
)

// Manifest resolvers selectable with --resolver.
const (
	ResolverGoList  = "golist"
	ResolverModFile = "modfile"
	ResolverNone    = "none"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Audit configuration
	DepsFile    string
	Binary      string
	WorkDir     string
	Resolver    string
	MetricsFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (VERCHECK_ prefix)
// 3. .env files
// 4. Config file (~/.vercheck.yaml or ./.vercheck.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("resolver", ResolverGoList)

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("." + constants.AppName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, vcerrors.NewConfigError("config", "could not read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		DepsFile:    v.GetString("deps_file"),
		Binary:      v.GetString("binary"),
		WorkDir:     v.GetString("work_dir"),
		Resolver:    strings.ToLower(v.GetString("resolver")),
		MetricsFile: v.GetString("metrics_file"),

		LogLevel:  firstNonEmpty(v.GetString("log_level"), os.Getenv("LOG_LEVEL")),
		LogFormat: firstNonEmpty(v.GetString("log_format"), os.Getenv("LOG_FORMAT"), "auto"),
		LogOutput: firstNonEmpty(v.GetString("log_output"), os.Getenv("LOG_OUTPUT"), "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// configFileViper returns a viper instance that reads path.
func configFileViper(path string) *viper.Viper {
	v := viper.New()
	v.Set("config", path)
	return v
}

// Merge copies values from other for every flag that changed reports as
// not set on the command line.
func (c *Config) Merge(other *Config, changed func(flag string) bool) {
	strs := map[string][2]*string{
		"format":    {&c.Format, &other.Format},
		"log-level": {&c.LogLevel, &other.LogLevel},
		"deps-file": {&c.DepsFile, &other.DepsFile},
		"binary":    {&c.Binary, &other.Binary},
		"work-dir":  {&c.WorkDir, &other.WorkDir},
		"resolver":  {&c.Resolver, &other.Resolver},
	}
	for flag, p := range strs {
		if !changed(flag) {
			*p[0] = *p[1]
		}
	}
	bools := map[string][2]*bool{
		"verbose":  {&c.Verbose, &other.Verbose},
		"quiet":    {&c.Quiet, &other.Quiet},
		"no-color": {&c.NoColor, &other.NoColor},
	}
	for flag, p := range bools {
		if !changed(flag) {
			*p[0] = *p[1]
		}
	}
	if other.MetricsFile != "" && !changed("metrics-file") {
		c.MetricsFile = other.MetricsFile
	}
	c.ConfigFile = other.ConfigFile
	c.LogFormat = other.LogFormat
	c.LogOutput = other.LogOutput
}

// Validate checks values that cobra cannot check for us.
func (c *Config) Validate() error {
	switch c.Resolver {
	case ResolverGoList, ResolverModFile, ResolverNone:
		return nil
	default:
		return vcerrors.NewConfigError("resolver",
			"must be one of "+ResolverGoList+", "+ResolverModFile+", "+ResolverNone+", got "+c.Resolver, nil)
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win over .env; godotenv never
// overrides variables that are already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
