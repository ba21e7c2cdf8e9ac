package app

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/vercheck/cmd/vercheck/cmd/check"
	"github.com/agentstation/vercheck/cmd/vercheck/cmd/man"
	"github.com/agentstation/vercheck/cmd/vercheck/cmd/report"
	"github.com/agentstation/vercheck/cmd/vercheck/cmd/tools"
	"github.com/agentstation/vercheck/cmd/vercheck/cmd/versions"
	"github.com/agentstation/vercheck/internal/cmd/output"
	"github.com/agentstation/vercheck/internal/platform"
)

// Execute runs the vercheck CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "vercheck",
		Short:   "Dependency version audit",
		Version: a.version,
		Long: `vercheck reports the versions of the modules a Go program was built
with and cross-checks them against what the module manifest (go.mod and the
module cache) says they should be.

Every disagreement is reported as a warning: a module loaded from an
unexpected place, at an unexpected version, or not loadable at all.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	bindFlags(rootCmd.PersistentFlags(), a.config)
	rootCmd.SetVersionTemplate("vercheck {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// bindFlags registers the global flags on fs. Config and env values are the
// flag defaults, so flags win when given.
func bindFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "config file (default is $HOME/.vercheck.yaml)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "verbose output (shortcut for --log-level=debug)")
	fs.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "minimal output (shortcut for --log-level=error)")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "disable colored output")
	fs.StringVarP(&c.Format, "format", "o", c.Format, "output format: table, wide, markdown, json, yaml")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
	fs.StringVar(&c.DepsFile, "deps-file", c.DepsFile, "YAML file declaring the packages to audit")
	fs.StringVar(&c.Binary, "binary", c.Binary, "audit this Go binary instead of vercheck itself")
	fs.StringVar(&c.WorkDir, "work-dir", c.WorkDir, "directory holding the go.mod to check against")
	fs.StringVar(&c.Resolver, "resolver", c.Resolver, "manifest resolver: golist, modfile, none")
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		fileConfig, err := loadConfig(configFileViper(a.config.ConfigFile))
		if err != nil {
			return err
		}
		a.config.Merge(fileConfig, cmd.Flags().Changed)
	}
	if err := a.config.Validate(); err != nil {
		return err
	}
	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return err
	}
	a.config.Format = string(format)

	// Reinitialize logger with the flag values
	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(report.NewCommand(a))
	rootCmd.AddCommand(versions.NewCommand(a))
	rootCmd.AddCommand(check.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(tools.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
	rootCmd.AddCommand(man.NewCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("vercheck %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s\n", platform.GoVersion())
			}
		},
	}
}

// exitCoder is implemented by errors that choose the process exit code.
type exitCoder interface {
	ExitCode() int
}

// ExitOnError prints err and exits. The exit code is taken from the first
// error in the chain that reports one, else 1.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	code := 1
	var ec exitCoder
	if stderrors.As(err, &ec) {
		code = ec.ExitCode()
	}
	//nolint:errcheck // Ignoring write error since we're exiting anyway
	_, _ = os.Stderr.WriteString(err.Error() + "\n")
	os.Exit(code)
}
