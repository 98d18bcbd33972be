package blockgraph

import "sort"

// NameSet is an unordered collection of identifier names.
type NameSet map[string]struct{}

// NewNameSet builds a set from the given names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	s.Add(names...)

	return s
}

// Add inserts the given names.
func (s NameSet) Add(names ...string) {
	for _, name := range names {
		s[name] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]

	return ok
}

// Union inserts every name of other into s.
func (s NameSet) Union(other NameSet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Intersect returns a new set with the names present in both s and other.
func (s NameSet) Intersect(other NameSet) NameSet {
	res := make(NameSet)
	for name := range s {
		if other.Has(name) {
			res[name] = struct{}{}
		}
	}

	return res
}

// Diff returns a new set with the names of s that are absent from other.
func (s NameSet) Diff(other NameSet) NameSet {
	res := make(NameSet)
	for name := range s {
		if !other.Has(name) {
			res[name] = struct{}{}
		}
	}

	return res
}

// Clone returns an independent copy of s.
func (s NameSet) Clone() NameSet {
	res := make(NameSet, len(s))
	res.Union(s)

	return res
}

// Sorted returns the names in lexical order. It is the only way names leave
// the set, so every externally visible listing is deterministic.
func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Len returns the number of names in the set.
func (s NameSet) Len() int {
	return len(s)
}
