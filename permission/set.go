package permission

import (
	"sort"
	"strings"
)

// Set is an unordered collection of capability names.
type Set map[string]struct{}

// NewSet builds a Set from names, skipping empty entries. Names are kept
// byte-for-byte; membership is exact string equality.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// Parse reads the comma-delimited form persisted alongside a role record,
// e.g. "users:read,users:write".
func Parse(delimited string) Set {
	if delimited == "" {
		return Set{}
	}
	return NewSet(strings.Split(delimited, ",")...)
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Missing returns the members of required absent from s, sorted.
func (s Set) Missing(required Set) []string {
	var missing []string
	for name := range required {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Names returns the members sorted.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// String returns the comma-delimited persisted form.
func (s Set) String() string {
	return strings.Join(s.Names(), ",")
}
