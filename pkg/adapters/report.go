package adapters

import (
	"fmt"
	"sort"

	"github.com/de-tools/activereport/pkg/models/api"
	"github.com/de-tools/activereport/pkg/report"
)

func MapReportToApi(r *report.Report) api.Report {
	entries := make([]map[string]any, 0, r.Entries.Len())
	for _, e := range r.Entries {
		entries = append(entries, MapEntryToFields(e))
	}

	return api.Report{
		Resource:   r.Name(),
		ID:         r.ID,
		State:      string(r.State()),
		NewRecord:  r.NewRecord(),
		Attributes: r.Attributes(),
		Errors:     r.Errors.FullMessages(),
		Entries:    entries,
	}
}

func MapReportToXML(r *report.Report) api.ReportXML {
	out := api.ReportXML{
		Resource:   r.Name(),
		ID:         r.ID,
		State:      string(r.State()),
		NewRecord:  r.NewRecord(),
		Attributes: mapFields(r.Attributes(), r.Definition().Attributes()),
		Errors:     r.Errors.FullMessages(),
	}

	for _, e := range r.Entries {
		fields := MapEntryToFields(e)
		out.Entries = append(out.Entries, api.EntryXML{Fields: mapFields(fields, sortedKeys(fields))})
	}
	return out
}

func MapErrorsToApi(errs report.Errors) api.Errors {
	return api.Errors{Errors: errs.FullMessages()}
}

func MapErrorsToXML(errs report.Errors) api.ErrorsXML {
	return api.ErrorsXML{Errors: errs.FullMessages()}
}

func MapDefinitionToApi(resource string, def *report.Definition) api.ReportResource {
	return api.ReportResource{
		Name:       resource,
		Attributes: append([]string{}, def.Attributes()...),
		CSV:        def.SupportsCSV(),
	}
}

// MapEntryToFields flattens an entry into named fields. Entries without
// named fields are exposed under "value".
func MapEntryToFields(entry any) map[string]any {
	switch e := entry.(type) {
	case report.Entry:
		fields := make(map[string]any)
		for _, k := range e.Keys() {
			fields[k], _ = e.Get(k)
		}
		return fields
	case map[string]any:
		return e
	}
	return map[string]any{"value": entry}
}

func mapFields(values map[string]any, order []string) []api.Field {
	fields := make([]api.Field, 0, len(order))
	for _, name := range order {
		text, err := report.FormatValue(values[name])
		if err != nil {
			text = fmt.Sprint(values[name])
		}
		fields = append(fields, api.Field{Name: name, Value: text})
	}
	return fields
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
