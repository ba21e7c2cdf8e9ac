// Package deps checks that the external tools vercheck shells out to are
// available on the system.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/agentstation/vercheck/pkg/version"
)

// Dependency describes an external command.
type Dependency struct {
	Name          string
	DisplayName   string
	CheckCommands []string // tried in order, first found wins
	MinVersion    string
}

// Status is the result of checking a Dependency.
type Status struct {
	Available  bool
	Path       string
	Version    string
	CheckError error
}

// GoToolchain is the go command used to resolve the module manifest.
// go list -m -json with module queries needs modules mode, hence 1.16.
var GoToolchain = Dependency{
	Name:          "go",
	DisplayName:   "Go toolchain",
	CheckCommands: []string{"go"},
	MinVersion:    "1.16",
}

// LSBRelease is the optional lsb_release command used to identify Linux
// distributions.
var LSBRelease = Dependency{
	Name:          "lsb_release",
	DisplayName:   "LSB release",
	CheckCommands: []string{"lsb_release"},
}

// Check verifies if a dependency is available on the system.
// It tries all CheckCommands in order and returns the first one that succeeds.
func Check(ctx context.Context, dep Dependency) Status {
	return check(ctx, dep, exec.LookPath, getVersion)
}

type lookPathFunc func(file string) (string, error)
type versionFunc func(ctx context.Context, cmd string) (string, error)

func check(ctx context.Context, dep Dependency, lookPath lookPathFunc, versionOf versionFunc) Status {
	status := Status{}

	for _, cmd := range dep.CheckCommands {
		path, err := lookPath(cmd)
		if err != nil {
			continue
		}

		status.Available = true
		status.Path = path

		if dep.MinVersion != "" {
			v, err := versionOf(ctx, cmd)
			if err != nil {
				status.CheckError = fmt.Errorf("found %s but could not detect version: %w", cmd, err)
			} else {
				status.Version = v
				if !meetsMinVersion(v, dep.MinVersion) {
					status.CheckError = fmt.Errorf("found %s version %s but requires %s or later", cmd, v, dep.MinVersion)
				}
			}
		}

		return status
	}

	if len(dep.CheckCommands) > 0 {
		status.CheckError = fmt.Errorf("%s not found in PATH (tried: %s)", dep.DisplayName, strings.Join(dep.CheckCommands, ", "))
	}

	return status
}

// Usable reports whether the dependency was found and passed its version check.
func (s Status) Usable() bool {
	return s.Available && s.CheckError == nil
}

// getVersion attempts to get the version of a command.
// Different tools have different version flags, so several are tried.
func getVersion(ctx context.Context, cmdName string) (string, error) {
	versionFlags := []string{"--version", "-v", "version"}

	for _, flag := range versionFlags {
		//nolint:gosec // cmdName comes from Dependency.CheckCommands (trusted source)
		cmd := exec.CommandContext(ctx, cmdName, flag)
		output, err := cmd.CombinedOutput()
		if err != nil {
			continue
		}

		if v := extractVersion(string(output)); v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("could not determine version")
}

var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bgo(\d+\.\d+(?:\.\d+)?(?:(?:rc|beta)\d+)?)`), // go version go1.24.6 linux/amd64
	regexp.MustCompile(`version\s+v?(\d+\.\d+(?:\.\d+)?)`),           // version 1.2.3
	regexp.MustCompile(`v?(\d+\.\d+\.\d+)`),                          // 1.2.3 or v1.2.3
}

// extractVersion extracts the first version number found in output.
func extractVersion(output string) string {
	for _, re := range versionPatterns {
		if m := re.FindStringSubmatch(output); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// meetsMinVersion reports whether detected is at least required. Versions
// that cannot be parsed are given the benefit of the doubt.
func meetsMinVersion(detected, required string) bool {
	d, err := version.Parse(detected)
	if err != nil {
		return true
	}
	r, err := version.Parse(required)
	if err != nil {
		return true
	}
	return d.Compare(r) >= 0
}
