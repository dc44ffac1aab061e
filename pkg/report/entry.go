package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

const (
	Positive = 1
	Negative = -1
)

// Entry is a row that exposes its fields by name.
type Entry interface {
	Get(key string) (any, bool)
	Keys() []string
}

// Entries is the ordered result set of a report. Elements are usually
// Entry values but any object is accepted.
type Entries []any

// Add appends an entry, keeping insertion order.
func (e *Entries) Add(entry any) {
	*e = append(*e, entry)
}

func (e Entries) Len() int {
	return len(e)
}

// Lookup reads a field from an arbitrary entry. Entry implementations and
// plain string-keyed maps are supported; any other value has no fields.
func Lookup(entry any, key string) (any, bool) {
	switch v := entry.(type) {
	case Entry:
		return v.Get(key)
	case map[string]any:
		value, ok := v[key]
		return value, ok
	case map[string]string:
		value, ok := v[key]
		return value, ok
	}
	return nil, false
}

// HashEntry is a key-value row.
type HashEntry map[string]any

func NewHashEntry(values map[string]any) HashEntry {
	entry := make(HashEntry, len(values))
	for k, v := range values {
		entry[k] = v
	}
	return entry
}

func (h HashEntry) Get(key string) (any, bool) {
	v, ok := h[key]
	return v, ok
}

// Keys returns the field names in lexical order.
func (h HashEntry) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Supports reports whether the entry carries a non-nil value for key.
func (h HashEntry) Supports(key string) bool {
	v, ok := h[key]
	return ok && v != nil
}

// SignedEntry stores an object together with the sign it contributes to a
// report, e.g. credits and debits on a ledger.
type SignedEntry struct {
	Object any
	Sign   int
}

// NewSignedEntry wraps object with a sign. The sign accepts booleans, the
// words "true", "false", "positive" and "negative", or any integer value.
func NewSignedEntry(object any, sign any) (SignedEntry, error) {
	s, err := ParseSign(sign)
	if err != nil {
		return SignedEntry{}, err
	}
	return SignedEntry{Object: object, Sign: s}, nil
}

func ParseSign(sign any) (int, error) {
	if sign == nil {
		return Positive, nil
	}
	switch strings.ToLower(fmt.Sprint(sign)) {
	case "true", "positive":
		return Positive, nil
	case "false", "negative":
		return Negative, nil
	}
	s, err := cast.ToIntE(sign)
	if err != nil {
		return 0, fmt.Errorf("invalid sign %v: %w", sign, err)
	}
	return s, nil
}

func (s SignedEntry) Positive() bool {
	return s.Sign >= 0
}

// Credit is an alias of Positive.
func (s SignedEntry) Credit() bool {
	return s.Positive()
}

func (s SignedEntry) Negative() bool {
	return s.Sign < 0
}

// Debit is an alias of Negative.
func (s SignedEntry) Debit() bool {
	return s.Negative()
}

// Get returns "sign" itself and otherwise delegates to the wrapped object.
func (s SignedEntry) Get(key string) (any, bool) {
	if key == "sign" {
		return s.Sign, true
	}
	return Lookup(s.Object, key)
}

func (s SignedEntry) Keys() []string {
	keys := []string{"sign"}
	if e, ok := s.Object.(Entry); ok {
		for _, k := range e.Keys() {
			if k != "sign" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}
