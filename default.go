package vercheck

import (
	"context"
	"sync"

	"github.com/agentstation/vercheck/internal/loader"
	"github.com/agentstation/vercheck/pkg/imports"
	"github.com/agentstation/vercheck/pkg/logging"
)

// Build identification of the host program, set with
//
//	-ldflags "-X github.com/agentstation/vercheck.Branch=main -X github.com/agentstation/vercheck.FullVersion=1.2.3-4-gabcdef"
//
// An unset FullVersion is derived from the VCS build settings. Build info
// does not record the branch, so an unset Branch reads "unknown".
var (
	Branch      string
	FullVersion string
)

// hostFor identifies the audited program. name overrides the main module path.
func hostFor(name string, lister moduleLister) imports.Host {
	h := imports.Host{Name: name, Branch: Branch, Version: FullVersion}
	if h.Branch == "" {
		h.Branch = "unknown"
	}
	if lister == nil {
		if h.Version == "" {
			h.Version = "unknown"
		}
		return h
	}

	main := lister.MainModule()
	if h.Name == "" {
		h.Name = main.Path
	}
	if h.Version == "" {
		h.Version = fullVersion(main)
	}
	return h
}

// fullVersion renders the main module version with the VCS revision,
// as in "v1.2.3-7f4e474c689c-dirty".
func fullVersion(m loader.MainModule) string {
	v := loader.VersionOf(loader.Module{Version: m.Version})
	if m.Revision != "" {
		rev := m.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		v += "-" + rev
	}
	if m.Modified {
		v += "-dirty"
	}
	return v
}

var (
	defaultOnce    sync.Once
	defaultAuditor Auditor
	defaultErr     error
)

// Default returns the process-wide Auditor for the running binary.
func Default() (Auditor, error) {
	defaultOnce.Do(func() {
		defaultAuditor, defaultErr = New()
	})
	return defaultAuditor, defaultErr
}

// PackageVersions returns name to version for the running binary. Failed
// imports map to the empty string. It returns nil if the binary carries no
// build information.
func PackageVersions() map[string]string {
	a, err := Default()
	if err != nil {
		logging.Debug().Err(err).Msg("version audit unavailable")
		return nil
	}
	v, err := a.Versions(context.Background())
	if err != nil {
		logging.Debug().Err(err).Msg("version audit failed")
		return nil
	}
	return v
}

// PackageVersionsString renders the version report of the running binary.
func PackageVersionsString(showPaths, debug bool) string {
	a, err := Default()
	if err != nil {
		return "vercheck: " + err.Error() + "\n"
	}
	s, err := a.Report(context.Background(), showPaths, debug)
	if err != nil {
		return "vercheck: " + err.Error() + "\n"
	}
	return s
}
