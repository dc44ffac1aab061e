package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/activereport/pkg/runtime/terminal/commands"
	"github.com/de-tools/activereport/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	load     commands.RegistryLoader
	reporter *export.Reporter
	summary  *export.Summary
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry commands.RegistryLoader
	Output   io.Writer
	Errors   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Errors == nil {
		opts.Errors = os.Stderr
	}

	cli := &CLI{
		load:     opts.Registry,
		reporter: export.NewReporter(opts.Output),
		summary:  export.NewSummary(opts.Errors),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetErr(opts.Errors)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "reports",
		Short:        "Generate and scaffold reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewListCmd(cli.load))
	cmd.AddCommand(commands.NewGenerateCmd(cli.load, cli.reporter, cli.summary))
	cmd.AddCommand(commands.NewScaffoldCmd())

	return cmd
}
