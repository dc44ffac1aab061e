package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/activereport/pkg/services/registry"
	"github.com/spf13/cobra"
)

// RegistryLoader resolves the report registry on first use so that commands
// which never touch a data source do not open one.
type RegistryLoader func(ctx context.Context) (registry.Registry, error)

type ListCmd struct {
	load RegistryLoader
}

func NewListCmd(load RegistryLoader) *cobra.Command {
	lc := &ListCmd{load: load}
	return &cobra.Command{
		Use:   "list",
		Short: "List the available report resources",
		Args:  cobra.NoArgs,
		RunE:  lc.run,
	}
}

func (lc *ListCmd) run(cmd *cobra.Command, _ []string) error {
	reg, err := lc.load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}

	resources := reg.ListResources()
	if len(resources) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No reports registered")
		return nil
	}

	for _, resource := range resources {
		def, err := reg.Lookup(resource)
		if err != nil {
			return err
		}
		line := resource
		if attrs := def.Attributes(); len(attrs) > 0 {
			line += " (" + strings.Join(attrs, ", ") + ")"
		}
		if def.SupportsCSV() {
			line += " [csv]"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
