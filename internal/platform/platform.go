// Package platform describes the host the program runs on.
package platform

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/agentstation/vercheck/internal/deps"
	"github.com/agentstation/vercheck/pkg/constants"
)

// lsb_release --all prints "Key:\tvalue" lines.
var (
	lsbCmdID      = regexp.MustCompile(`(?i)Distributor ID:\s*(.*)`)
	lsbCmdRelease = regexp.MustCompile(`(?i)Release:\s*(.*)`)
)

// Prober gathers the facts a platform label is built from. The zero value
// is not usable; see NewProber.
type Prober struct {
	GOOS     string
	GOARCH   string
	ReadFile func(name string) ([]byte, error)
	Run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewProber returns a Prober for the running host.
func NewProber() *Prober {
	return &Prober{
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		ReadFile: os.ReadFile,
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			status := deps.Check(ctx, deps.Dependency{Name: name, DisplayName: name, CheckCommands: []string{name}})
			if !status.Available {
				return nil, status.CheckError
			}
			//nolint:gosec // path comes from a PATH lookup of a fixed command name
			return exec.CommandContext(ctx, status.Path, args...).Output()
		},
	}
}

var (
	labelOnce sync.Once
	label     string
)

// Label returns the platform label of the running host, computed once.
func Label() string {
	labelOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ProbeTimeout)
		defer cancel()
		label = NewProber().Label(ctx)
	})
	return label
}

// Label returns "Linux-<distro>_<release>-<arch>" on Linux and
// "<goos>-<goarch>" elsewhere.
func (p *Prober) Label(ctx context.Context) string {
	if p.GOOS != "linux" {
		return p.GOOS + "-" + p.GOARCH
	}
	name, release := p.Distro(ctx)
	parts := make([]string, 0, 2)
	for _, s := range []string{name, release} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return "Linux-" + strings.Join(parts, "_") + "-" + p.GOARCH
}

// Distro identifies the Linux distribution, trying /etc/lsb-release,
// /etc/os-release, lsb_release --all and /etc/arch-release in that order.
func (p *Prober) Distro(ctx context.Context) (name, release string) {
	if data, err := p.ReadFile("/etc/lsb-release"); err == nil {
		if name, release = parseLSBRelease(string(data)); name != "" && release != "" {
			return name, release
		}
	}
	if data, err := p.ReadFile("/etc/os-release"); err == nil {
		if name, release = parseOSRelease(string(data)); name != "" && release != "" {
			return name, release
		}
	}
	if out, err := p.Run(ctx, deps.LSBRelease.Name, "--all"); err == nil {
		if name, release = parseLSBReleaseOutput(string(out)); name != "" && release != "" {
			return name, release
		}
	}
	if _, err := p.ReadFile("/etc/arch-release"); err == nil {
		return "Arch_Linux", ""
	}
	return name, release
}

// parseLSBRelease reads DISTRIB_ID and DISTRIB_RELEASE from /etc/lsb-release.
func parseLSBRelease(content string) (name, release string) {
	return envPair(content, "DISTRIB_ID", "DISTRIB_RELEASE")
}

// parseOSRelease reads NAME and VERSION_ID from os-release(5) content.
func parseOSRelease(content string) (name, release string) {
	return envPair(content, "NAME", "VERSION_ID")
}

// envPair parses shell-style KEY=value content and returns two of its values.
func envPair(content, nameKey, releaseKey string) (name, release string) {
	env, err := godotenv.Unmarshal(content)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(env[nameKey]), strings.TrimSpace(env[releaseKey])
}

func parseLSBReleaseOutput(content string) (name, release string) {
	s := bufio.NewScanner(strings.NewReader(content))
	for s.Scan() {
		line := s.Text()
		if m := lsbCmdID.FindStringSubmatch(line); m != nil {
			name = strings.TrimSpace(m[1])
		} else if m := lsbCmdRelease.FindStringSubmatch(line); m != nil {
			release = strings.TrimSpace(m[1])
		}
		if name != "" && release != "" {
			break
		}
	}
	return name, release
}
