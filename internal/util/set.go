// Package util contains small generic helpers shared across the grammar,
// automaton, and table packages.
package util

import (
	"fmt"
	"sort"
	"strings"
)

// ISet is a minimal generic set contract. It is implemented by StringSet and
// SVSet so that algorithms that only need membership and iteration (FIRST-set
// bookkeeping, lookahead merging, token dedup) don't need to care which
// concrete representation backs them.
type ISet[E any] interface {
	// Add adds the given element to the Set. If the element is already in
	// the set, no effect occurs.
	Add(element E)

	// Has returns whether the given set has the specified element.
	Has(element E) bool

	// Len returns the number of elements in the set.
	Len() int

	// Elements returns the set's members. No particular order is
	// guaranteed.
	Elements() []E

	// Equal returns whether o is an ISet[E] with the same members. Ordering
	// is never considered.
	Equal(o any) bool

	// String is a string with the contents of the set, not guaranteed to
	// be in any particular order.
	String() string
}

// VSet is a Set that maps a value onto each of its elements.
type VSet[E any, V any] interface {
	ISet[E]

	// Set assigns the value of the element, adding it if not already
	// present.
	Set(element E, data V)

	// Get retrieves the value of an element, or the zero value of V if the
	// element isn't present.
	Get(element E) V
}

// SVSet is a set that uses strings as its item type and some other type as
// its associated data value. It is the set used for FIRST-set and lookahead
// bookkeeping, where the string key is a terminal identifier and the value
// is the typed Terminal it was parsed from.
type SVSet[V any] map[string]V

// NewSVSet creates an SVSet, optionally seeded from one or more maps.
func NewSVSet[V any](of ...map[string]V) SVSet[V] {
	s := SVSet[V]{}
	for _, m := range of {
		for k, v := range m {
			s.Set(k, v)
		}
	}
	return s
}

func (s SVSet[V]) Copy() SVSet[V] { return NewSVSet(map[string]V(s)) }

// Add adds idx with the zero value of V. Has no effect if idx is already a
// member; use Set to overwrite the stored value.
func (s SVSet[V]) Add(idx string) {
	if _, ok := s[idx]; !ok {
		var zero V
		s[idx] = zero
	}
}

func (s SVSet[V]) Set(idx string, val V) { s[idx] = val }

func (s SVSet[V]) Get(idx string) V { return s[idx] }

func (s SVSet[V]) Has(idx string) bool {
	_, ok := s[idx]
	return ok
}

func (s SVSet[V]) Remove(idx string) { delete(s, idx) }

func (s SVSet[V]) Len() int { return len(s) }

func (s SVSet[V]) Elements() []string {
	elems := make([]string, 0, len(s))
	for k := range s {
		elems = append(elems, k)
	}
	return elems
}

// Union returns a new SVSet containing the members of both s and s2. Where a
// key is present in both, the value from s2 wins.
func (s SVSet[V]) Union(s2 SVSet[V]) SVSet[V] {
	merged := s.Copy()
	for k, v := range s2 {
		merged.Set(k, v)
	}
	return merged
}

func (s SVSet[V]) StringOrdered() string {
	keys := s.Elements()
	sort.Strings(keys)
	return joinBraced(keys)
}

func (s SVSet[V]) String() string {
	return joinBraced(s.Elements())
}

// Equal returns whether o is an SVSet[V] (or ISet[string]) with the same
// keys. Associated values are not compared.
func (s SVSet[V]) Equal(o any) bool {
	switch other := o.(type) {
	case SVSet[V]:
		return keysEqual(s, other)
	case ISet[string]:
		if s.Len() != other.Len() {
			return false
		}
		for k := range s {
			if !other.Has(k) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func keysEqual[V any](a, b SVSet[V]) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// StringSet is a map[string]bool with methods added to fulfill ISet[string].
// It is used wherever only membership (no associated value) is needed, such
// as tracking which non-terminal identifiers have already been declared.
type StringSet map[string]bool

func NewStringSet(of ...[]string) StringSet {
	s := StringSet{}
	for _, sl := range of {
		for _, v := range sl {
			s.Add(v)
		}
	}
	return s
}

func (s StringSet) Add(value string)    { s[value] = true }
func (s StringSet) Remove(value string) { delete(s, value) }
func (s StringSet) Has(value string) bool {
	_, has := s[value]
	return has
}
func (s StringSet) Len() int { return len(s) }

func (s StringSet) Elements() []string {
	sl := make([]string, 0, len(s))
	for item := range s {
		sl = append(sl, item)
	}
	return sl
}

func (s StringSet) Copy() StringSet {
	newS := NewStringSet()
	for k := range s {
		newS[k] = true
	}
	return newS
}

func (s StringSet) Union(o StringSet) StringSet {
	newSet := s.Copy()
	for k := range o {
		newSet.Add(k)
	}
	return newSet
}

func (s StringSet) StringOrdered() string {
	keys := s.Elements()
	sort.Strings(keys)
	return joinBraced(keys)
}

func (s StringSet) String() string {
	return joinBraced(s.Elements())
}

func (s StringSet) Equal(o any) bool {
	other, ok := o.(ISet[string])
	if !ok {
		return false
	}
	if s.Len() != other.Len() {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

func joinBraced(items []string) string {
	var sb strings.Builder
	sb.WriteRune('{')
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%v", item))
		if i+1 < len(items) {
			sb.WriteString(", ")
		}
	}
	sb.WriteRune('}')
	return sb.String()
}
