// Package constants provides shared constants used throughout the vercheck codebase.
// This includes timeouts, file permissions, names of the built-in pseudo entries
// and other values that should be consistent across the application.
package constants

import "time"

// AppName is the name of the vercheck program.
const AppName = "vercheck"

// Timeout constants define various timeout durations used in the application
const (
	// ResolveTimeout bounds a single manifest resolution subprocess
	ResolveTimeout = 2 * time.Minute

	// ProbeTimeout bounds external commands run by environment probes
	ProbeTimeout = 10 * time.Second

	// ShutdownTimeout is the grace period for CLI shutdown
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Pseudo entry names. These entries are reported in the import catalog but
// are never looked up in the manifest catalog.
const (
	// RuntimeEntry reports the Go toolchain the program was built with
	RuntimeEntry = "go"

	// PlatformEntry reports the host operating system label
	PlatformEntry = "platform"

	// CryptoEntry reports the crypto stack in use
	CryptoEntry = "crypto"
)

// ManifestComment is the comment attached to extra packages that only the
// manifest registry reported.
const ManifestComment = "according to the manifest"

// EnvPrefix is the prefix for environment variables read by the CLI.
const EnvPrefix = "VERCHECK"
