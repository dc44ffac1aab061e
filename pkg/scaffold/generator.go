package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

const (
	DefaultDir        = "pkg/reports"
	DefaultModulePath = "github.com/de-tools/activereport"
)

var (
	ErrInvalidName = errors.New("report name must be snake_case and start with a letter")
	ErrExists      = errors.New("file already exists")

	namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
)

type Options struct {
	Name       string
	Dir        string
	ModulePath string
}

// Result lists what the generator wrote and the line that registers the
// new report.
type Result struct {
	Files        []string
	Registration string
}

type stub struct {
	Resource   string
	Package    string
	Type       string
	ModulePath string
}

var (
	reportTemplate = template.Must(template.New("report").Parse(`package {{.Package}}

import (
	"context"

	"{{.ModulePath}}/pkg/report"
)

const Resource = "{{.Resource}}"

// {{.Type}}Report returns the definition of the {{.Resource}} report.
func {{.Type}}Report() *report.Definition {
	return report.Define(Resource).
		BuildReport(func(ctx context.Context, r *report.Report) error {
			return nil
		})
}
`))

	testTemplate = template.Must(template.New("report_test").Parse(`package {{.Package}}

import (
	"context"
	"testing"

	"{{.ModulePath}}/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test{{.Type}}Report(t *testing.T) {
	ctx := context.Background()

	r, err := report.New(ctx, {{.Type}}Report(), nil)
	require.NoError(t, err)

	ok, err := r.Generate(ctx, true)
	require.NoError(t, err)
	assert.True(t, ok)
}
`))
)

// Generate writes a report definition stub and its test under
// <dir>/<name>. Existing files are never overwritten.
func Generate(opts Options) (Result, error) {
	if !namePattern.MatchString(opts.Name) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidName, opts.Name)
	}
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.ModulePath == "" {
		opts.ModulePath = DefaultModulePath
	}

	s := stub{
		Resource:   opts.Name,
		Package:    strings.ReplaceAll(opts.Name, "_", ""),
		Type:       camelCase(opts.Name),
		ModulePath: opts.ModulePath,
	}

	dir := filepath.Join(opts.Dir, opts.Name)
	files := []struct {
		path string
		tmpl *template.Template
	}{
		{path: filepath.Join(dir, "report.go"), tmpl: reportTemplate},
		{path: filepath.Join(dir, "report_test.go"), tmpl: testTemplate},
	}

	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrExists, f.path)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var result Result
	for _, f := range files {
		if err := render(f.path, f.tmpl, s); err != nil {
			return result, err
		}
		result.Files = append(result.Files, f.path)
	}

	result.Registration = fmt.Sprintf("%s.Resource: %s.%sReport(),", s.Package, s.Package, s.Type)
	return result, nil
}

func render(path string, tmpl *template.Template, s stub) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(src); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func camelCase(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
