package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/activereport/pkg/report"
)

// Summary prints the validation errors of a report that could not be
// generated.
type Summary struct {
	writer io.Writer
}

func NewSummary(writer io.Writer) *Summary {
	if writer == nil {
		writer = os.Stderr
	}
	return &Summary{writer: writer}
}

func (s *Summary) Handle(rep *report.Report) error {
	tmpl := `{{.Name}} report could not be generated:
{{range .Errors}}- {{.}}
{{end}}`
	t, err := template.New("summary").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(s.writer, struct {
		Name   string
		Errors []string
	}{
		Name:   rep.Name(),
		Errors: rep.Errors.FullMessages(),
	})
}
