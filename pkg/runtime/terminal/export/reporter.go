package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/de-tools/activereport/pkg/adapters"
	"github.com/de-tools/activereport/pkg/report"
)

type TableConfig struct {
	MaxColumnWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MaxColumnWidth: 40,
	}
}

// Reporter prints generated reports to the console as a table of entries.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type attribute struct {
	Name  string
	Value string
}

type tableView struct {
	Title      string
	ID         int64
	State      string
	Attributes []attribute
	Columns    []string
	Rows       [][]string
}

func (c *Reporter) Handle(rep *report.Report) error {
	view := c.newTableView(rep)

	widths := make([]int, len(view.Columns))
	for i, col := range view.Columns {
		widths[i] = len([]rune(col))
	}
	for _, row := range view.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}

	funcMap := template.FuncMap{
		"formatRow": func(cells []string) string {
			var b strings.Builder
			b.WriteString("|")
			for i, cell := range cells {
				fmt.Fprintf(&b, " %-*s |", widths[i], cell)
			}
			return b.String()
		},
		"separator": func() string {
			var b strings.Builder
			b.WriteString("+")
			for _, w := range widths {
				b.WriteString(strings.Repeat("-", w+2))
				b.WriteString("+")
			}
			return b.String()
		},
	}

	tmpl := `{{.Title}} #{{.ID}} ({{.State}})
{{range .Attributes}}{{.Name}}: {{.Value}}
{{end}}{{if .Columns}}{{separator}}
{{formatRow .Columns}}
{{separator}}
{{range .Rows}}{{formatRow .}}
{{end}}{{separator}}
{{else}}No entries.
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, view)
}

func (c *Reporter) newTableView(rep *report.Report) tableView {
	view := tableView{
		Title: rep.Name(),
		ID:    rep.ID,
		State: string(rep.State()),
	}

	values := rep.Attributes()
	for _, name := range rep.Definition().Attributes() {
		view.Attributes = append(view.Attributes, attribute{Name: name, Value: c.cell(values[name])})
	}

	entries := make([]map[string]any, 0, rep.Entries.Len())
	seen := make(map[string]bool)
	for _, e := range rep.Entries {
		fields := adapters.MapEntryToFields(e)
		for k := range fields {
			if !seen[k] {
				seen[k] = true
				view.Columns = append(view.Columns, k)
			}
		}
		entries = append(entries, fields)
	}
	sort.Strings(view.Columns)

	for _, fields := range entries {
		row := make([]string, len(view.Columns))
		for i, col := range view.Columns {
			row[i] = c.cell(fields[col])
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func (c *Reporter) cell(v any) string {
	text, err := report.FormatValue(v)
	if err != nil {
		text = fmt.Sprint(v)
	}
	r := []rune(text)
	if c.config.MaxColumnWidth > 3 && len(r) > c.config.MaxColumnWidth {
		return string(r[:c.config.MaxColumnWidth-3]) + "..."
	}
	return text
}
