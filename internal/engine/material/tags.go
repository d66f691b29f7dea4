package material

import "sort"

// Tags is a set of routing labels. A pass draws into a target when their
// tag sets intersect.
type Tags map[string]struct{}

// NewTags builds a tag set.
func NewTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Add inserts names into the set.
func (t Tags) Add(names ...string) {
	for _, n := range names {
		t[n] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (t Tags) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Intersects reports whether t and other share at least one tag.
func (t Tags) Intersects(other Tags) bool {
	small, large := t, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for n := range small {
		if _, ok := large[n]; ok {
			return true
		}
	}
	return false
}

// Slice returns the tags sorted.
func (t Tags) Slice() []string {
	out := make([]string, 0, len(t))
	for n := range t {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
