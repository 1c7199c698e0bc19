// Package choice maps free-text and numeric answers onto the small closed
// sets the generator asks about: package manager, backend provider and the
// install confirmation.
package choice

import "strings"

// Spec describes one question's accepted answers.
type Spec[T comparable] struct {
	// Tokens maps numeric menu selectors ("1", "2", ...) to values.
	Tokens map[string]T
	// Names maps lowercase aliases to values.
	Names map[string]T
	// Default is returned for empty input.
	Default T
}

// Resolve maps input onto a value of spec. The second return value is false
// when the input matched no alias or token (Unresolved). Matching is exact
// after trimming and lowercasing; prefixes and substrings never match.
func Resolve[T comparable](input string, spec Spec[T]) (T, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return spec.Default, true
	}
	s = strings.ToLower(s)
	if v, ok := spec.Names[s]; ok {
		return v, true
	}
	if v, ok := spec.Tokens[s]; ok {
		return v, true
	}
	var zero T
	return zero, false
}

// WithDefault returns a copy of spec using def as the default.
func (s Spec[T]) WithDefault(def T) Spec[T] {
	s.Default = def
	return s
}
