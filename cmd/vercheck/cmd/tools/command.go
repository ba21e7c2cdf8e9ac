// Package tools implements the tools command, which reports the external
// commands vercheck shells out to.
package tools

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/vercheck/internal/cmd/output"
	"github.com/agentstation/vercheck/internal/deps"
)

// AppContext defines what the tools command needs from the app.
type AppContext interface {
	OutputFormat() string
}

// Row is the status of one external tool.
type Row struct {
	Name       string `json:"name" yaml:"name"`
	Available  bool   `json:"available" yaml:"available"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	MinVersion string `json:"min_version,omitempty" yaml:"min_version,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Tools lists the external commands, in the order they are reported.
var Tools = []deps.Dependency{deps.GoToolchain, deps.LSBRelease}

// NewCommand creates the tools command.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "tools",
		GroupID: "management",
		Short:   "Check the external commands vercheck uses",
		Long: `Tools reports whether the go command (used to resolve the manifest)
and lsb_release (used to label Linux platforms) are installed.

Neither is required: without go the manifest resolves to nothing and no
cross-checking happens; without lsb_release the platform label falls back
to /etc/os-release.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := Check(cmd.Context(), Tools)
			format := output.DetectFormat(app.OutputFormat())
			if format.Structured() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), rows)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), TableData(rows))
		},
	}
}

// Check checks each tool.
func Check(ctx context.Context, tools []deps.Dependency) []Row {
	rows := make([]Row, 0, len(tools))
	for _, dep := range tools {
		status := deps.Check(ctx, dep)
		row := Row{
			Name:       dep.DisplayName,
			Available:  status.Available,
			Path:       status.Path,
			Version:    status.Version,
			MinVersion: dep.MinVersion,
		}
		if status.CheckError != nil {
			row.Error = status.CheckError.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// TableData converts rows to a status table.
func TableData(rows []Row) output.Data {
	data := output.Data{
		Headers:         []string{"Tool", "Status", "Version", "Path"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignCenter, output.AlignLeft, output.AlignLeft},
	}
	for _, r := range rows {
		status := "missing"
		switch {
		case r.Available && r.Error == "":
			status = "ok"
		case r.Available:
			status = "unusable"
		}
		version := r.Version
		if version == "" {
			version = "-"
		}
		if r.MinVersion != "" {
			version += " (>= " + r.MinVersion + ")"
		}
		data.Rows = append(data.Rows, []string{r.Name, status, version, r.Path})
	}
	return data
}
