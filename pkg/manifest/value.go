package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tags a Value as a single string or an ordered list of strings.
type Kind int

const (
	KindScalar Kind = iota
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a manifest entry. Absence of a key is reported separately by the
// lookup functions and is never represented as an empty Value.
type Value struct {
	kind   Kind
	scalar string
	list   []string
}

// Scalar returns a single-string Value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List returns a list Value. The slice is copied.
func List(items ...string) Value {
	l := make([]string, len(items))
	copy(l, items)
	return Value{kind: KindList, list: l}
}

// Kind reports whether the value is a scalar or a list.
func (v Value) Kind() Kind {
	return v.kind
}

// IsList reports whether the value is a list.
func (v Value) IsList() bool {
	return v.kind == KindList
}

// Items returns the list elements, or a one-element slice for a scalar.
func (v Value) Items() []string {
	if v.kind == KindScalar {
		return []string{v.scalar}
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// String renders a scalar as-is and a list joined by single spaces.
func (v Value) String() string {
	if v.kind == KindScalar {
		return v.scalar
	}
	return strings.Join(v.list, " ")
}

// valueOf converts a decoded TOML value. Tables are not values.
func valueOf(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Value{}, false
	case string:
		return Scalar(t), true
	case []string:
		return List(t...), true
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, fmt.Sprint(item))
		}
		return List(items...), true
	case map[string]any:
		return Value{}, false
	default:
		return Scalar(fmt.Sprint(t)), true
	}
}

// Table is a resolved sub-table of the manifest keyed by variable name.
// Lookups are case-insensitive, matching the store.
type Table map[string]Value

// NewTable builds a Table, folding keys to lower case.
func NewTable(entries map[string]Value) Table {
	t := make(Table, len(entries))
	for k, v := range entries {
		t[strings.ToLower(k)] = v
	}
	return t
}

// TableOf converts a decoded TOML table. Nested tables are dropped.
func TableOf(raw map[string]any) Table {
	t := make(Table, len(raw))
	for k, r := range raw {
		if v, ok := valueOf(r); ok {
			t[strings.ToLower(k)] = v
		}
	}
	return t
}

// Get looks up key, ignoring case.
func (t Table) Get(key string) (Value, bool) {
	if v, ok := t[key]; ok {
		return v, true
	}
	v, ok := t[strings.ToLower(key)]
	return v, ok
}

// Keys returns the table keys in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
