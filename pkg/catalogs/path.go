package catalogs

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath resolves symlinks, cleans the result and folds case on
// platforms with case-insensitive file systems. Paths that cannot be
// resolved (for example because they do not exist on this machine) are
// made absolute and cleaned instead. The empty path stays empty.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		resolved = p
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	return normcase(filepath.Clean(resolved))
}

// InstallRoot returns the normalized module root directory a dependency was
// loaded from. Import and manifest metadata are compared at this granularity.
func InstallRoot(dir string) string {
	return NormalizePath(dir)
}

// SameLocation reports whether a and b name the same directory once
// normalized. Two empty locations are the same.
func SameLocation(a, b string) bool {
	return NormalizePath(a) == NormalizePath(b)
}

func normcase(p string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(p)
	}
	return p
}
