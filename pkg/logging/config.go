package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/vercheck/pkg/constants"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error, off).
	Level string

	// Format is json, console or auto (console on a terminal).
	Format string

	// Output is stderr, stdout, discard or a file path.
	Output string

	// TimeFormat names a console timestamp layout: kitchen, rfc3339, unix,
	// or a Go layout string.
	TimeFormat string

	NoColor   bool
	AddCaller bool
}

// ConfigFromEnv reads the logger configuration of an embedding program.
// VERCHECK_LOG_* variables win over the unprefixed LOG_* ones; DEBUG set
// without a level selects debug.
func ConfigFromEnv() *Config {
	level := env("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	return &Config{
		Level:      firstSet(level, "info"),
		Format:     firstSet(env("LOG_FORMAT"), "auto"),
		Output:     firstSet(env("LOG_OUTPUT"), "stderr"),
		TimeFormat: firstSet(env("LOG_TIME_FORMAT"), "kitchen"),
		NoColor:    os.Getenv("NO_COLOR") != "",
		AddCaller:  env("LOG_CALLER") == "true",
	}
}

// NewLoggerFromConfig builds a logger carrying the process-wide noise
// filter. A nil cfg reads the environment. The global zerolog level is set
// to the configured level.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = ConfigFromEnv()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writerFor(cfg)).
		Level(level).
		Hook(Noise()).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func writerFor(cfg *Config) io.Writer {
	out, tty := openOutput(cfg.Output)

	format := strings.ToLower(cfg.Format)
	if format == "auto" {
		format = "json"
		if tty {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeLayout(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

// openOutput resolves an output name. Unwritable files fall back to stderr.
func openOutput(name string) (w io.Writer, tty bool) {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr, isTerminal(os.Stderr)
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout)
	case "discard", "none":
		return io.Discard, false
	}
	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, isTerminal(os.Stderr)
	}
	return file, false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		return l
	}
	return zerolog.InfoLevel
}

func timeLayout(name string) string {
	switch strings.ToLower(name) {
	case "rfc3339":
		return time.RFC3339
	case "unix", "epoch":
		return ""
	case "", "kitchen":
		return time.Kitchen
	}
	if strings.Contains(name, "2006") || strings.Contains(name, "15:04") {
		return name
	}
	return time.Kitchen
}

// addField adds a field to the context based on its type.
func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case bool:
		return ctx.Bool(key, v)
	case error:
		return ctx.AnErr(key, v)
	default:
		return ctx.Interface(key, v)
	}
}

func env(key string) string {
	if value := os.Getenv(constants.EnvPrefix + "_" + key); value != "" {
		return value
	}
	return os.Getenv(key)
}

func firstSet(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
