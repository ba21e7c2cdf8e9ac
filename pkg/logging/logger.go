// Package logging provides structured logging for the vercheck system using zerolog.
// Console output is used when stderr is a terminal and JSON output otherwise.
// The default logger reads VERCHECK_LOG_LEVEL, VERCHECK_LOG_FORMAT and
// VERCHECK_LOG_OUTPUT (or the unprefixed LOG_* names) at start-up.
//
// Every logger built by this package carries the process-wide NoiseFilter
// hook, so log events emitted while dependencies are being loaded can be
// silenced without touching the call sites that emit them:
//
//	log := logging.Default()
//	log.Info().Str("module", "github.com/rs/zerolog").Msg("Loading module")
//
//	pop, err := logging.Noise().Push(zerolog.WarnLevel, `^module .* replaced by`)
//	if err == nil {
//		defer pop()
//	}
package logging

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger zerolog.Logger

	// Nop logger for discarding output.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = NewLoggerFromConfig(ConfigFromEnv())
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New creates a new logger with the given writer.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		Hook(Noise()).
		With().
		Timestamp().
		Logger()
}

// With creates a child logger with additional context fields.
func With() zerolog.Context {
	return defaultLogger.With()
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warning level log event.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts a new error level log event.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Err creates a new error log event with the given error.
func Err(err error) *zerolog.Event {
	return defaultLogger.Err(err)
}
