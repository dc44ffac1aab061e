package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

const idLayout = "20060102150405"

var ErrUndeclaredAttribute = errors.New("attribute is not declared")

type State string

const (
	StateNew        State = "new"
	StateValidating State = "validating"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
	StateGenerating State = "generating"
	StateGenerated  State = "generated"
)

// Report aggregates entries from its params. Reports are never persisted and
// belong to the caller that created them.
type Report struct {
	ID      int64
	Params  Params
	Errors  Errors
	Entries Entries

	def        *Definition
	attributes map[string]any
	state      State
	createdAt  time.Time
}

type options struct {
	clock func() time.Time
}

type Option func(*options)

// WithClock overrides the time source used for the id and two-part times.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// New assembles params, assigns declared attributes and runs the
// initialization hooks of def.
func New(ctx context.Context, def *Definition, params map[string]any, opts ...Option) (*Report, error) {
	if def == nil {
		return nil, fmt.Errorf("report definition is nil")
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	now := o.clock()

	assembly, err := AssembleParams(params, now)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble %s params: %w", def.name, err)
	}

	r := &Report{
		Params:     assembly.Params,
		def:        def,
		attributes: make(map[string]any, len(def.attributes)),
		state:      StateNew,
		createdAt:  now,
	}

	for _, name := range def.attributes {
		r.attributes[name] = nil
	}
	if !r.Params.Empty() {
		for _, name := range def.attributes {
			r.attributes[name] = r.Params[name]
		}
	}
	for _, name := range assembly.Cleared {
		if def.HasAttribute(name) {
			r.attributes[name] = nil
		}
	}

	if err := runHooks(ctx, r, def.beforeInitialize); err != nil {
		return nil, fmt.Errorf("%s before initialize: %w", def.name, err)
	}

	r.ID, _ = strconv.ParseInt(now.Format(idLayout), 10, 64)
	r.Errors = Errors{}
	r.Entries = Entries{}

	if err := runHooks(ctx, r, def.afterInitialize); err != nil {
		return nil, fmt.Errorf("%s after initialize: %w", def.name, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("report", def.name).
		Int64("id", r.ID).
		Msg("report initialized")

	return r, nil
}

func (r *Report) Name() string {
	return r.def.name
}

func (r *Report) Definition() *Definition {
	return r.def
}

func (r *Report) State() State {
	return r.state
}

func (r *Report) CreatedAt() time.Time {
	return r.createdAt
}

// NewRecord is always true: reports are never saved.
func (r *Report) NewRecord() bool {
	return true
}

// Attribute returns the current value of a declared attribute.
func (r *Report) Attribute(name string) (any, bool) {
	v, ok := r.attributes[name]
	return v, ok
}

func (r *Report) SetAttribute(name string, value any) error {
	if _, ok := r.attributes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUndeclaredAttribute, name)
	}
	r.attributes[name] = value
	return nil
}

// Attributes returns a copy of all declared attributes and their values.
func (r *Report) Attributes() map[string]any {
	return maps.Clone(r.attributes)
}

// String returns the attribute as a string, or "" when it is unset.
func (r *Report) String(name string) string {
	return cast.ToString(r.attributes[name])
}

func (r *Report) Int(name string) (int, error) {
	v, ok := r.attributes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUndeclaredAttribute, name)
	}
	return cast.ToIntE(v)
}

func (r *Report) Time(name string) (time.Time, error) {
	v, ok := r.attributes[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUndeclaredAttribute, name)
	}
	return cast.ToTimeE(v)
}

// Valid resets the errors and runs the before-validate hooks, the rules in
// registration order and the after-validate hooks. It reports whether no
// errors were recorded.
func (r *Report) Valid(ctx context.Context) bool {
	r.state = StateValidating
	r.Errors = Errors{}

	for _, rules := range [][]Rule{r.def.beforeValidate, r.def.rules, r.def.afterValidate} {
		for _, rule := range rules {
			rule(ctx, r)
		}
	}

	if r.Errors.Empty() {
		r.state = StateValid
		return true
	}

	zerolog.Ctx(ctx).Debug().
		Str("report", r.def.name).
		Strs("errors", r.Errors).
		Msg("report validation failed")
	r.state = StateInvalid
	return false
}

// Generate builds the entries. With performValidation set, an invalid report
// returns false and nothing is built. Errors from hooks or the build routine
// are returned as is.
func (r *Report) Generate(ctx context.Context, performValidation bool) (bool, error) {
	if performValidation && !r.Valid(ctx) {
		return false, nil
	}

	r.state = StateGenerating
	logger := zerolog.Ctx(ctx)

	if err := runHooks(ctx, r, r.def.beforeBuild); err != nil {
		return false, fmt.Errorf("%s before build: %w", r.def.name, err)
	}
	if r.def.build != nil {
		if err := r.def.build(ctx, r); err != nil {
			return false, fmt.Errorf("failed to build %s report: %w", r.def.name, err)
		}
	}
	if err := runHooks(ctx, r, r.def.afterBuild); err != nil {
		return false, fmt.Errorf("%s after build: %w", r.def.name, err)
	}

	r.state = StateGenerated
	logger.Debug().
		Str("report", r.def.name).
		Int64("id", r.ID).
		Int("entries", r.Entries.Len()).
		Msg("report generated")

	return true, nil
}

// ToCSV renders the report with its CSV export. A nil result without error
// means the report does not support CSV export, which is different from an
// export with no rows.
func (r *Report) ToCSV(ctx context.Context) ([]byte, error) {
	if r.def.csv == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := r.def.csv(ctx, r, &buf); err != nil {
		return nil, fmt.Errorf("failed to export %s report to csv: %w", r.def.name, err)
	}
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

func runHooks(ctx context.Context, r *Report, hooks []Hook) error {
	for _, hook := range hooks {
		if err := hook(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
