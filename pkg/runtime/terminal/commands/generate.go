package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/activereport/pkg/adapters"
	"github.com/de-tools/activereport/pkg/report"
	"github.com/de-tools/activereport/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var ErrInvalidReport = errors.New("report is invalid")

type GenerateCmd struct {
	params         []string
	format         string
	skipValidation bool
	load           RegistryLoader
	reporter       *export.Reporter
	summary        *export.Summary
}

func NewGenerateCmd(load RegistryLoader, reporter *export.Reporter, summary *export.Summary) *cobra.Command {
	gc := &GenerateCmd{load: load, reporter: reporter, summary: summary}
	cmd := &cobra.Command{
		Use:   "generate <resource>",
		Short: "Generate a report",
		Args:  cobra.ExactArgs(1),
		RunE:  gc.run,
	}

	cmd.Flags().StringArrayVarP(&gc.params, "param", "p", nil, "Report parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&gc.format, "format", "f", FormatTable, "Output format: table, csv or json")
	cmd.Flags().BoolVar(&gc.skipValidation, "skip-validation", false, "Build the report without validating it")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	resource := args[0]

	switch gc.format {
	case FormatTable, FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("unsupported format %q", gc.format)
	}

	params, err := ParseParams(gc.params)
	if err != nil {
		return err
	}

	reg, err := gc.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}
	def, err := reg.Lookup(resource)
	if err != nil {
		return err
	}

	rep, err := report.New(ctx, def, params)
	if err != nil {
		return err
	}

	ok, err := rep.Generate(ctx, !gc.skipValidation)
	if err != nil {
		return err
	}
	if !ok {
		if err := gc.summary.Handle(rep); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrInvalidReport, resource)
	}

	zerolog.Ctx(ctx).Debug().
		Str("resource", resource).
		Int("entries", rep.Entries.Len()).
		Msg("report generated")

	out := cmd.OutOrStdout()
	switch gc.format {
	case FormatCSV:
		data, err := rep.ToCSV(ctx)
		if err != nil {
			return err
		}
		if data == nil {
			return fmt.Errorf("%s report cannot be exported to CSV", resource)
		}
		_, err = out.Write(data)
		return err
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(adapters.MapReportToApi(rep))
	}
	return gc.reporter.Handle(rep)
}

// ParseParams turns key=value pairs into report params. Repeated keys keep
// every value in order.
func ParseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid param %q, expected key=value", pair)
		}
		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case string:
			params[key] = []string{existing, value}
		case []string:
			params[key] = append(existing, value)
		}
	}
	return params, nil
}
