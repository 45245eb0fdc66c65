package graph

import (
	"iter"
	"maps"
	"slices"
)

// Attributes is a flat string-to-string table attached to every graph, node
// and edge. Iteration is always in ascending key order regardless of the
// order in which keys were set. Entries can be overwritten but not removed.
//
// The zero value is an empty table ready to use.
type Attributes struct {
	values map[string]string
}

// Set inserts or overwrites the value stored under key.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	a.values[key] = value
}

// Get returns the value stored under key and whether it was present.
func (a *Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// IsEmpty reports whether no attribute has been set.
func (a *Attributes) IsEmpty() bool { return len(a.values) == 0 }

// Len returns the number of attributes.
func (a *Attributes) Len() int { return len(a.values) }

// Keys returns the attribute names in ascending order.
func (a *Attributes) Keys() []string {
	return slices.Sorted(maps.Keys(a.values))
}

// All yields key/value pairs in ascending key order.
func (a *Attributes) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range a.Keys() {
			if !yield(k, a.values[k]) {
				return
			}
		}
	}
}

// SetAll copies every entry of m into the table.
func (a *Attributes) SetAll(m map[string]string) {
	for k, v := range m {
		a.Set(k, v)
	}
}
