// Package man implements the hidden man command.
package man

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// NewCommand creates the man command, which writes the man page of the
// root command to stdout.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Long:   `Generate the man page for the vercheck CLI tool.`,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "VERCHECK",
				Section: "1",
				Source:  "vercheck",
				Manual:  "vercheck Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
