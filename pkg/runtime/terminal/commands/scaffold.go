package commands

import (
	"fmt"

	"github.com/de-tools/activereport/pkg/scaffold"
	"github.com/spf13/cobra"
)

type ScaffoldCmd struct {
	dir        string
	modulePath string
}

func NewScaffoldCmd() *cobra.Command {
	sc := &ScaffoldCmd{}
	cmd := &cobra.Command{
		Use:   "scaffold <name>",
		Short: "Generate a report definition stub",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.dir, "dir", scaffold.DefaultDir, "Directory the report package is created in")
	cmd.Flags().StringVar(&sc.modulePath, "module", scaffold.DefaultModulePath, "Go module path of the project")

	return cmd
}

func (sc *ScaffoldCmd) run(cmd *cobra.Command, args []string) error {
	result, err := scaffold.Generate(scaffold.Options{
		Name:       args[0],
		Dir:        sc.dir,
		ModulePath: sc.modulePath,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range result.Files {
		fmt.Fprintf(out, "created %s\n", f)
	}
	fmt.Fprintf(out, "\nRegister the report with:\n\t%s\n", result.Registration)
	return nil
}
