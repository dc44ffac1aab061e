package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return fixedNow
}

func simpleDefinition() *Definition {
	return Define("simple_test").
		BuildReport(func(_ context.Context, r *Report) error {
			r.Entries.Add(NewHashEntry(map[string]any{"first_name": "Topher", "last_name": "Fangio"}))
			return nil
		})
}

func basicDefinition() *Definition {
	return Define("basic_test").
		DefineAttribute("jobNumber").
		ValidatesPresenceOf("jobNumber").
		BuildReport(func(_ context.Context, r *Report) error {
			v, _ := r.Attribute("jobNumber")
			r.Entries.Add(NewHashEntry(map[string]any{"jobNumber": v}))
			return nil
		})
}

func TestNew_AssignsIdAndResetsCollections(t *testing.T) {
	ctx := context.Background()

	r, err := New(ctx, Define("empty"), nil, WithClock(fixedClock))
	require.NoError(t, err)

	assert.Equal(t, int64(20250713093000), r.ID)
	assert.Equal(t, StateNew, r.State())
	assert.True(t, r.Errors.Empty())
	assert.Equal(t, 0, r.Entries.Len())
	assert.True(t, r.NewRecord())
	assert.Equal(t, fixedNow, r.CreatedAt())
}

func TestGenerate_WithoutBuildRoutineHasNoEntries(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, Define("empty"), nil)
	require.NoError(t, err)

	ok, err := r.Generate(ctx, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, r.Entries)
	assert.Equal(t, StateGenerated, r.State())
}

func TestGenerate_SimpleReport(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, simpleDefinition(), nil)
	require.NoError(t, err)

	ok, err := r.Generate(ctx, true)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, r.Entries, 1)

	v, found := Lookup(r.Entries[0], "first_name")
	assert.True(t, found)
	assert.Equal(t, "Topher", v)
}

func TestGenerate_BasicReportCopiesDeclaredAttribute(t *testing.T) {
	// Given
	ctx := context.Background()
	params := map[string]any{"jobNumber": 123456}

	// When
	r, err := New(ctx, basicDefinition(), params)
	require.NoError(t, err)
	ok, err := r.Generate(ctx, true)

	// Then
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, r.Entries, 1)
	entry, isHash := r.Entries[0].(HashEntry)
	require.True(t, isHash)
	assert.True(t, entry.Supports("jobNumber"))
	assert.Equal(t, 123456, entry["jobNumber"])
}

func TestValid_EmptyParamsNameTheMissingField(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, basicDefinition(), map[string]any{})
	require.NoError(t, err)

	assert.False(t, r.Valid(ctx))
	assert.Equal(t, []string{"jobNumber must be defined"}, r.Errors.FullMessages())
	assert.Equal(t, StateInvalid, r.State())
}

func TestValid_ErrorsAreResetBetweenCalls(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, basicDefinition(), nil)
	require.NoError(t, err)

	assert.False(t, r.Valid(ctx))
	first := r.Errors.FullMessages()
	assert.False(t, r.Valid(ctx))

	assert.Equal(t, first, r.Errors.FullMessages())
	assert.Equal(t, 1, r.Errors.Len())
}

func TestValid_ErrorsTrackPresenceOfEveryField(t *testing.T) {
	def := Define("presence").ValidatesPresenceOf("a", "b", "c")

	tests := []struct {
		name     string
		params   map[string]any
		expected []string
	}{
		{name: "all present", params: map[string]any{"a": 1, "b": "x", "c": []string{"y"}}, expected: []string{}},
		{name: "blank string", params: map[string]any{"a": 1, "b": " ", "c": "z"}, expected: []string{"b must be defined"}},
		{name: "nil and absent", params: map[string]any{"a": nil, "b": "x"}, expected: []string{"a must be defined", "c must be defined"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r, err := New(ctx, def, tt.params)
			require.NoError(t, err)

			valid := r.Valid(ctx)

			assert.Equal(t, len(tt.expected) == 0, valid)
			assert.Equal(t, tt.expected, r.Errors.FullMessages())
		})
	}
}

func TestGenerate_InvalidReportIsNotBuilt(t *testing.T) {
	ctx := context.Background()
	var buildHooks int
	def := basicDefinition().
		BeforeBuild(func(context.Context, *Report) error { buildHooks++; return nil }).
		AfterBuild(func(context.Context, *Report) error { buildHooks++; return nil })

	r, err := New(ctx, def, nil)
	require.NoError(t, err)

	ok, err := r.Generate(ctx, true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, r.Entries)
	assert.Zero(t, buildHooks)
}

func TestGenerate_SkippingValidationAlwaysBuilds(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, basicDefinition(), nil)
	require.NoError(t, err)

	ok, err := r.Generate(ctx, false)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, r.Entries, 1)
	v, _ := Lookup(r.Entries[0], "jobNumber")
	assert.Nil(t, v)
}

func TestGenerate_BuildErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	def := Define("failing").BuildReport(func(context.Context, *Report) error { return boom })

	r, err := New(ctx, def, nil)
	require.NoError(t, err)

	ok, err := r.Generate(ctx, true)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateGenerating, r.State())
}

func TestLifecycle_HookOrder(t *testing.T) {
	ctx := context.Background()
	var calls []string
	record := func(name string) Hook {
		return func(context.Context, *Report) error {
			calls = append(calls, name)
			return nil
		}
	}
	recordRule := func(name string) Rule {
		return func(context.Context, *Report) { calls = append(calls, name) }
	}

	def := Define("ordered").
		BeforeInitialize(record("before_initialize")).
		AfterInitialize(record("after_initialize")).
		BeforeValidate(recordRule("before_validate")).
		Validate(recordRule("validate")).
		AfterValidate(recordRule("after_validate")).
		BeforeBuild(record("before_build")).
		AfterBuild(record("after_build")).
		BuildReport(func(context.Context, *Report) error {
			calls = append(calls, "build")
			return nil
		})

	r, err := New(ctx, def, nil)
	require.NoError(t, err)
	_, err = r.Generate(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"before_initialize",
		"after_initialize",
		"before_validate",
		"validate",
		"after_validate",
		"before_build",
		"build",
		"after_build",
	}, calls)
}

func TestBeforeInitialize_SeesAssignedAttributes(t *testing.T) {
	ctx := context.Background()
	var seen any
	def := Define("attrs").
		DefineAttributes("jobNumber").
		BeforeInitialize(func(_ context.Context, r *Report) error {
			seen, _ = r.Attribute("jobNumber")
			return nil
		})

	_, err := New(ctx, def, map[string]any{"jobNumber": "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", seen)
}

func TestNew_InitializeHookErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	def := Define("broken").AfterInitialize(func(context.Context, *Report) error { return boom })

	_, err := New(context.Background(), def, nil)
	assert.ErrorIs(t, err, boom)
}

func TestNew_ShapeErrorIsReturned(t *testing.T) {
	_, err := New(context.Background(), Define("dates"), map[string]any{"due(1z)": "1"})
	assert.ErrorIs(t, err, ErrParamShape)
}

func TestNew_NilDefinition(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestAttributes_CompositeAndCleared(t *testing.T) {
	ctx := context.Background()
	def := Define("dated").DefineAttributes("due", "stage")

	r, err := New(ctx, def, map[string]any{
		"due(1i)":   "2024",
		"due(2i)":   "3",
		"due(3i)":   "15",
		"stage":     "open",
		"ignored":   "x",
		"other(1i)": "",
	}, WithClock(fixedClock))
	require.NoError(t, err)

	due, err := r.Time("due")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), due)
	assert.Equal(t, "open", r.String("stage"))
	assert.Equal(t, map[string]any{"due": due, "stage": "open"}, r.Attributes())

	cleared, err := New(ctx, def, map[string]any{"due(1i)": "", "stage": "open"})
	require.NoError(t, err)
	v, ok := cleared.Attribute("due")
	assert.True(t, ok)
	assert.Nil(t, v)
	_, inParams := cleared.Params["due"]
	assert.False(t, inParams)
}

func TestAttributes_SetAndTypedAccess(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, Define("typed").DefineAttributes("count"), map[string]any{"count": "12"})
	require.NoError(t, err)

	n, err := r.Int("count")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	require.NoError(t, r.SetAttribute("count", 13))
	n, err = r.Int("count")
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	assert.ErrorIs(t, r.SetAttribute("missing", 1), ErrUndeclaredAttribute)
	_, err = r.Int("missing")
	assert.ErrorIs(t, err, ErrUndeclaredAttribute)
}

func TestToCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported export is nil", func(t *testing.T) {
		r, err := New(ctx, simpleDefinition(), nil)
		require.NoError(t, err)
		_, err = r.Generate(ctx, true)
		require.NoError(t, err)

		out, err := r.ToCSV(ctx)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("no rows still has a header", func(t *testing.T) {
		def := Define("csv").ExportCSV(CSVColumns("first_name", "last_name"))
		r, err := New(ctx, def, nil)
		require.NoError(t, err)

		out, err := r.ToCSV(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first_name,last_name\n", string(out))
	})

	t.Run("rows follow entries", func(t *testing.T) {
		def := simpleDefinition().Extend("csv_rows").ExportCSV(CSVTable(
			Column{Header: "First", Key: "first_name"},
			Column{Header: "Last", Key: "last_name"},
			Column{Header: "Missing", Key: "missing"},
		))
		r, err := New(ctx, def, nil)
		require.NoError(t, err)
		_, err = r.Generate(ctx, true)
		require.NoError(t, err)

		out, err := r.ToCSV(ctx)
		require.NoError(t, err)
		assert.Equal(t, "First,Last,Missing\nTopher,Fangio,\n", string(out))
	})
}
