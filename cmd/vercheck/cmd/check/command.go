// Package check implements the check command, which exits non-zero when
// the audit found version warnings.
package check

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/vercheck"
	"github.com/agentstation/vercheck/internal/cmd/output"
	"github.com/agentstation/vercheck/internal/metrics"
	"github.com/agentstation/vercheck/pkg/catalogs"
	"github.com/agentstation/vercheck/pkg/reconcile"
)

// AppContext defines what the check command needs from the app.
type AppContext interface {
	Auditor() (vercheck.Auditor, error)
	Logger() *zerolog.Logger
	OutputFormat() string
	MetricsFile() string
}

// WarningsError is returned when the audit produced warnings.
type WarningsError struct {
	Count int
}

func (e *WarningsError) Error() string {
	return fmt.Sprintf("%d version warning(s)", e.Count)
}

// ExitCode distinguishes findings from operational failures.
func (e *WarningsError) ExitCode() int {
	return 2
}

// Result is the structured output of the check command.
type Result struct {
	Warnings      []reconcile.Warning `json:"warnings" yaml:"warnings"`
	Extras        []catalogs.Entry    `json:"extras" yaml:"extras"`
	ManifestError string              `json:"manifest_error,omitempty" yaml:"manifest_error,omitempty"`
}

// NewCommand creates the check command.
func NewCommand(app AppContext) *cobra.Command {
	var (
		metricsFile string
		noFail      bool
	)

	cmd := &cobra.Command{
		Use:     "check",
		GroupID: "core",
		Short:   "Cross-check loaded versions against the manifest",
		Long: `Check builds both version catalogs, prints every warning and exits
with status 2 when there was at least one.

With --metrics-file the audit is also written in the Prometheus text format,
for pickup by the node exporter textfile collector.`,
		Example: `  vercheck check
  vercheck check --metrics-file /var/lib/node_exporter/vercheck.prom
  vercheck check -o json --no-fail`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			aud, err := app.Auditor()
			if err != nil {
				return err
			}
			snap, err := aud.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			logger := app.Logger()

			if metricsFile == "" {
				metricsFile = app.MetricsFile()
			}
			if metricsFile != "" {
				if err := writeMetrics(snap, metricsFile); err != nil {
					return err
				}
				logger.Debug().Str("path", metricsFile).Msg("metrics written")
			}

			if snap.ManifestErr != nil {
				logger.Warn().Err(snap.ManifestErr).Msg("manifest unavailable, versions were not cross-checked")
			}

			if err := printResult(cmd.OutOrStdout(), app.OutputFormat(), snap); err != nil {
				return err
			}

			if n := len(snap.Result.Warnings); n > 0 && !noFail {
				return &WarningsError{Count: n}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&noFail, "no-fail", false, "exit 0 even when there are warnings")
	return cmd
}

func printResult(w io.Writer, explicit string, snap *vercheck.Snapshot) error {
	format := output.DetectFormat(explicit)
	if format.Structured() {
		res := Result{
			Warnings: snap.Result.Warnings,
			Extras:   snap.Result.Extras,
		}
		if res.Warnings == nil {
			res.Warnings = []reconcile.Warning{}
		}
		if res.Extras == nil {
			res.Extras = []catalogs.Entry{}
		}
		if snap.ManifestErr != nil {
			res.ManifestError = snap.ManifestErr.Error()
		}
		return output.NewFormatter(format).Format(w, res)
	}

	if len(snap.Result.Warnings) == 0 {
		_, err := fmt.Fprintln(w, "No version warnings.")
		return err
	}
	for _, msg := range snap.Warnings() {
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(snap *vercheck.Snapshot, path string) error {
	rec := metrics.NewRecorder(nil)
	rec.Observe(metrics.Audit{
		Packages:         snap.Imports.Len(),
		Failed:           snap.Failed(),
		ManifestPackages: snap.Manifest.Len(),
		Result:           snap.Result,
		Duration:         snap.BuildDuration,
	})
	return rec.WriteTextfile(path)
}
