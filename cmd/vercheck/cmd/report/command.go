// Package report implements the report command.
package report

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/vercheck"
)

// AppContext defines what the report command needs from the app.
type AppContext interface {
	Auditor() (vercheck.Auditor, error)
	Logger() *zerolog.Logger
}

// NewCommand creates the report command.
func NewCommand(app AppContext) *cobra.Command {
	var showPaths, debug bool

	cmd := &cobra.Command{
		Use:     "report",
		GroupID: "core",
		Short:   "Print the version report",
		Long: `Report prints one line per audited package, "name: version [comment]",
followed by any version warnings.

With --paths every line also shows the directory the package was loaded
from. With --debug the report ends with GOFLAGS, the declared requirements
and the module search path.`,
		Example: `  vercheck report
  vercheck report --paths
  vercheck report --binary ./bin/server --work-dir ./server --debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			aud, err := app.Auditor()
			if err != nil {
				return err
			}
			text, err := aud.Report(cmd.Context(), showPaths, debug)
			if err != nil {
				return err
			}
			app.Logger().Debug().Bool("paths", showPaths).Bool("debug", debug).Msg("report rendered")
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().BoolVar(&showPaths, "paths", false, "show the location of every package")
	cmd.Flags().BoolVar(&debug, "debug", false, "append GOFLAGS, requirements and the module search path")
	return cmd
}
