package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/agentstation/vercheck/internal/deps"
	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/constants"
	"github.com/agentstation/vercheck/pkg/errors"
	"github.com/agentstation/vercheck/pkg/logging"
)

// listedModule is the subset of `go list -m -json` output vercheck reads.
type listedModule struct {
	Path    string
	Version string
	Main    bool
	Dir     string
	Replace *listedModule
	Error   *struct{ Err string }
}

// GoListResolver resolves requirements by running `go list -m -json` in the
// work dir, so the answer reflects go.mod, go.work and GOFLAGS exactly as the
// go command sees them.
type GoListResolver struct {
	WorkDir string
	Env     []string // extra environment, appended to os.Environ

	// run executes the go command and returns its stdout.
	run func(ctx context.Context, dir string, env []string, args ...string) ([]byte, error)
}

// NewGoListResolver returns a resolver running in workDir.
func NewGoListResolver(workDir string) *GoListResolver {
	return &GoListResolver{WorkDir: workDir, run: runGo}
}

// Resolve implements Resolver. With no requirements every module in the
// build list is listed. Requirements the build list does not know are left
// out of the catalog rather than failing the whole listing.
func (r *GoListResolver) Resolve(ctx context.Context, requirements []string) (*catalogs.ManifestCatalog, error) {
	args := []string{"list", "-e", "-m", "-json"}
	if len(requirements) == 0 {
		args = append(args, "all")
	} else {
		args = append(args, requirements...)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ResolveTimeout)
	defer cancel()

	run := r.run
	if run == nil {
		run = runGo
	}
	out, err := run(ctx, r.WorkDir, r.Env, args...)
	if err != nil {
		return nil, err
	}
	return decodeList(ctx, out)
}

func runGo(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
	status := deps.Check(ctx, deps.GoToolchain)
	if !status.Usable() {
		return nil, errors.NewProcessError("resolve manifest", "go", "", status.CheckError)
	}

	//nolint:gosec // the go binary comes from a PATH lookup, arguments are module paths
	cmd := exec.CommandContext(ctx, status.Path, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.ErrTimeout
		}
		return nil, errors.NewProcessError("resolve manifest", "go "+strings.Join(args, " "), strings.TrimSpace(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}

// decodeList reads the concatenated JSON objects go list prints. Modules
// reported with an error are skipped.
func decodeList(ctx context.Context, out []byte) (*catalogs.ManifestCatalog, error) {
	logger := logging.FromContext(ctx)
	cat := catalogs.NewManifestCatalog()
	dec := json.NewDecoder(bytes.NewReader(out))
	for {
		var m listedModule
		if err := dec.Decode(&m); err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.WrapParse("json", "go list -m -json", err)
		}
		if m.Main || m.Path == "" {
			continue
		}
		if m.Error != nil {
			logger.Debug().Str("module", m.Path).Str("error", m.Error.Err).Msg("module not in build list")
			continue
		}

		ver, dir := m.Version, m.Dir
		if m.Replace != nil {
			if m.Replace.Version != "" {
				ver = m.Replace.Version
			}
			if m.Replace.Dir != "" {
				dir = m.Replace.Dir
			}
		}
		if ver == "" {
			ver = catalogs.UnknownVersion
		}
		cat.Set(m.Path, catalogs.Record{Version: ver, Location: dir})
	}
	return cat, nil
}
