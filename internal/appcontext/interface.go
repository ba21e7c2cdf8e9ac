// Package appcontext provides the application context interface shared by
// all vercheck commands.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/vercheck"
)

// Interface defines what commands need from the application. The App in
// cmd/vercheck/app implements it; tests use Mock.
type Interface interface {
	// Auditor returns the auditor, creating it lazily on first use.
	Auditor() (vercheck.Auditor, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format (table, wide, json, yaml),
	// or the empty string to auto-detect.
	OutputFormat() string

	// MetricsFile returns the path metrics are written to, if any.
	MetricsFile() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
