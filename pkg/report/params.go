package report

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ErrParamShape is returned when a multi-parameter attribute cannot be
// assembled: unknown type tag, failed cast or out-of-range date part.
var ErrParamShape = errors.New("malformed multi-parameter attribute")

// multiParamKey matches "name(<position><tag>)", e.g. "due(1i)".
var multiParamKey = regexp.MustCompile(`^([^(]+)\(([0-9]*)([a-z]?)\)$`)

// Params is the assembled parameter mapping of a report.
type Params map[string]any

func (p Params) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Blank reports whether name is absent or holds a blank value.
func (p Params) Blank(name string) bool {
	return IsBlank(p[name])
}

func (p Params) Empty() bool {
	return len(p) == 0
}

// IsBlank treats nil, whitespace-only strings and empty collections as blank.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value) == ""
	case []string:
		return len(value) == 0
	case time.Time:
		return value.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Assembly is the result of AssembleParams.
type Assembly struct {
	Params Params
	// Cleared lists composite attributes whose parts were all empty. They are
	// left out of Params and their attributes are reset to nil.
	Cleared []string
}

type paramPart struct {
	position int
	value    any
}

// AssembleParams merges composite "name(Ni)" keys into single values and
// passes every other key through. now anchors two-part times to a date.
func AssembleParams(raw map[string]any, now time.Time) (Assembly, error) {
	out := Assembly{Params: make(Params, len(raw))}
	groups := make(map[string][]paramPart)
	var order []string

	for key, value := range raw {
		if !strings.Contains(key, "(") {
			out.Params[key] = value
			continue
		}

		m := multiParamKey.FindStringSubmatch(key)
		if m == nil {
			return Assembly{}, fmt.Errorf("%w: key %q", ErrParamShape, key)
		}
		name, pos, tag := m[1], m[2], m[3]
		if _, seen := groups[name]; !seen {
			groups[name] = nil
			order = append(order, name)
		}

		value = firstValue(value)
		if isEmptyPart(value) {
			continue
		}

		position := 0
		if pos != "" {
			position, _ = strconv.Atoi(pos)
		}
		typed, err := castPart(key, tag, value)
		if err != nil {
			return Assembly{}, err
		}
		groups[name] = append(groups[name], paramPart{position: position, value: typed})
	}

	sort.Strings(order)
	for _, name := range order {
		parts := groups[name]
		if len(parts) == 0 {
			out.Cleared = append(out.Cleared, name)
			continue
		}
		sort.SliceStable(parts, func(i, j int) bool { return parts[i].position < parts[j].position })

		values := make([]any, len(parts))
		for i, p := range parts {
			values[i] = p.value
		}
		composed, err := compose(name, values, now)
		if err != nil {
			return Assembly{}, err
		}
		out.Params[name] = composed
	}

	return out, nil
}

func firstValue(v any) any {
	if values, ok := v.([]string); ok {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	return v
}

func isEmptyPart(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func castPart(key, tag string, value any) (any, error) {
	switch tag {
	case "i":
		if s, ok := value.(string); ok {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("%w: %s=%q is not an integer", ErrParamShape, key, s)
			}
			return n, nil
		}
		n, err := cast.ToIntE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParamShape, key, err)
		}
		return n, nil
	case "f":
		if s, ok := value.(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s=%q is not a number", ErrParamShape, key, s)
			}
			return f, nil
		}
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParamShape, key, err)
		}
		return f, nil
	case "", "s":
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParamShape, key, err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unsupported type tag %q in %s", ErrParamShape, tag, key)
}

// compose builds the value of a group from its ordered parts:
//
//	2 parts: hour, minute on the date of now
//	3 parts: year, month, day at local midnight
//	5 parts: year, month, day, hour, minute in local time
//
// Any other count yields nil.
func compose(name string, values []any, now time.Time) (any, error) {
	switch len(values) {
	case 2, 3, 5:
	default:
		return nil, nil
	}

	ints := make([]int, len(values))
	for i, v := range values {
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("%w: %s part %d must be an integer", ErrParamShape, name, i+1)
		}
		ints[i] = n
	}

	var year, day, hour, minute int
	var month time.Month
	switch len(ints) {
	case 2:
		year, month, day = now.Date()
		hour, minute = ints[0], ints[1]
	case 3:
		year, month, day = ints[0], time.Month(ints[1]), ints[2]
	case 5:
		year, month, day = ints[0], time.Month(ints[1]), ints[2]
		hour, minute = ints[3], ints[4]
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("%w: %s has invalid time %02d:%02d", ErrParamShape, name, hour, minute)
	}

	loc := now.Location()
	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if y, m, d := t.Date(); y != year || m != month || d != day {
		return nil, fmt.Errorf("%w: %s has invalid date %04d-%02d-%02d", ErrParamShape, name, year, month, day)
	}
	return t, nil
}
