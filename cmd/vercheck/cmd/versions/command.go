// Package versions implements the versions command.
package versions

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/vercheck"
	"github.com/agentstation/vercheck/internal/cmd/output"
	"github.com/agentstation/vercheck/pkg/catalogs"
)

// AppContext defines what the versions command needs from the app.
type AppContext interface {
	Auditor() (vercheck.Auditor, error)
	OutputFormat() string
}

// NewCommand creates the versions command.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "versions",
		GroupID: "core",
		Short:   "List package versions",
		Long: `Versions lists every audited package with its version. Tables are
printed on terminals and JSON otherwise; use --format to choose.

The wide table adds the location column. JSON and YAML output carry the
full entries, including load failures.`,
		Example: `  vercheck versions
  vercheck versions -o wide
  vercheck versions -o json | jq '.[] | select(.failure)'`,
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

			format := output.DetectFormat(app.OutputFormat())
			formatter := output.NewFormatter(format)
			w := cmd.OutOrStdout()

			if format.Structured() {
				return formatter.Format(w, snap.Entries())
			}
			if err := formatter.Format(w, TableData(snap.Entries(), format == output.FormatWide)); err != nil {
				return err
			}
			if warnings := snap.Warnings(); len(warnings) > 0 {
				fmt.Fprintf(w, "\n%d version warning(s), run \"vercheck check\" for details\n", len(warnings))
			}
			return nil
		},
	}
}

// TableData converts entries to table rows. Absent values render as None.
func TableData(entries []catalogs.Entry, wide bool) output.Data {
	headers := []string{"Name", "Version", "Comment"}
	if wide {
		headers = append(headers, "Location")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		version := e.VersionString()
		if e.Version == nil {
			version = "None"
		}
		comment := e.Comment
		if e.Failure != nil {
			comment = e.Failure.Class
		}
		row := []string{e.Name, version, comment}
		if wide {
			location := e.LocationString()
			if e.Location == nil {
				location = "None"
			}
			row = append(row, location)
		}
		rows = append(rows, row)
	}
	return output.Data{Headers: headers, Rows: rows}
}
