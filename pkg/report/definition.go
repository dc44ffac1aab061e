package report

import (
	"context"
	"fmt"
	"io"
	"slices"
)

// Hook runs at a lifecycle boundary. A returned error aborts the phase.
type Hook func(ctx context.Context, r *Report) error

// Rule is a validation step. Rules record failures with r.Errors.Add.
type Rule func(ctx context.Context, r *Report)

// BuildFunc populates r.Entries.
type BuildFunc func(ctx context.Context, r *Report) error

// CSVFunc writes the report as comma separated values.
type CSVFunc func(ctx context.Context, r *Report, w io.Writer) error

// Definition holds everything declared for one kind of report: attributes,
// validation rules, lifecycle hooks, the build routine and the CSV export.
// A Definition is configured once at startup and then only read.
type Definition struct {
	name       string
	attributes []string

	beforeInitialize []Hook
	afterInitialize  []Hook
	beforeValidate   []Rule
	rules            []Rule
	afterValidate    []Rule
	beforeBuild      []Hook
	afterBuild       []Hook

	build BuildFunc
	csv   CSVFunc
}

func Define(name string) *Definition {
	return &Definition{name: name}
}

// Extend returns a child definition inheriting attributes, rules, hooks, the
// build routine and the CSV export. Declarations on the child do not leak
// back into the parent.
func (d *Definition) Extend(name string) *Definition {
	return &Definition{
		name:             name,
		attributes:       slices.Clone(d.attributes),
		beforeInitialize: slices.Clone(d.beforeInitialize),
		afterInitialize:  slices.Clone(d.afterInitialize),
		beforeValidate:   slices.Clone(d.beforeValidate),
		rules:            slices.Clone(d.rules),
		afterValidate:    slices.Clone(d.afterValidate),
		beforeBuild:      slices.Clone(d.beforeBuild),
		afterBuild:       slices.Clone(d.afterBuild),
		build:            d.build,
		csv:              d.csv,
	}
}

func (d *Definition) Name() string {
	return d.name
}

// DefineAttributes declares fields populated from the assembled params when a
// report is constructed. Declarations accumulate across calls.
func (d *Definition) DefineAttributes(names ...string) *Definition {
	for _, name := range names {
		if name == "" || slices.Contains(d.attributes, name) {
			continue
		}
		d.attributes = append(d.attributes, name)
	}
	return d
}

func (d *Definition) DefineAttribute(name string) *Definition {
	return d.DefineAttributes(name)
}

func (d *Definition) Attributes() []string {
	return slices.Clone(d.attributes)
}

func (d *Definition) HasAttribute(name string) bool {
	return slices.Contains(d.attributes, name)
}

// ValidatesPresenceOf registers a rule failing for every listed field that is
// blank in the report params.
func (d *Definition) ValidatesPresenceOf(fields ...string) *Definition {
	if len(fields) == 0 {
		return d
	}
	fields = slices.Clone(fields)
	return d.Validate(func(_ context.Context, r *Report) {
		for _, field := range fields {
			if r.Params.Blank(field) {
				r.Errors.Add(fmt.Sprintf("%s must be defined", field))
			}
		}
	})
}

func (d *Definition) Validate(rule Rule) *Definition {
	d.rules = append(d.rules, rule)
	return d
}

func (d *Definition) BeforeInitialize(h Hook) *Definition {
	d.beforeInitialize = append(d.beforeInitialize, h)
	return d
}

func (d *Definition) AfterInitialize(h Hook) *Definition {
	d.afterInitialize = append(d.afterInitialize, h)
	return d
}

func (d *Definition) BeforeValidate(rule Rule) *Definition {
	d.beforeValidate = append(d.beforeValidate, rule)
	return d
}

func (d *Definition) AfterValidate(rule Rule) *Definition {
	d.afterValidate = append(d.afterValidate, rule)
	return d
}

func (d *Definition) BeforeBuild(h Hook) *Definition {
	d.beforeBuild = append(d.beforeBuild, h)
	return d
}

func (d *Definition) AfterBuild(h Hook) *Definition {
	d.afterBuild = append(d.afterBuild, h)
	return d
}

// BuildReport sets the routine that fills the entries. A definition without
// one produces reports with no entries.
func (d *Definition) BuildReport(fn BuildFunc) *Definition {
	d.build = fn
	return d
}

// ExportCSV enables CSV export.
func (d *Definition) ExportCSV(fn CSVFunc) *Definition {
	d.csv = fn
	return d
}

func (d *Definition) SupportsCSV() bool {
	return d.csv != nil
}
