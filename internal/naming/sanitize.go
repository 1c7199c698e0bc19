package naming

import "strings"

// PackageName is an identifier produced by a Sanitizer. It always matches
// [a-z0-9-]+, never starts or ends with a hyphen, is at most MaxLength bytes
// and is not a reserved identifier.
type PackageName string

func (p PackageName) String() string { return string(p) }

// Sanitizer turns free-form project names into package identifiers. The
// reserved identifier set is injected so it can follow the target runtime's
// built-in module list without touching the algorithm.
type Sanitizer struct {
	reserved map[string]bool
}

// NewSanitizer returns a Sanitizer that rejects any of the given identifiers.
// Entries go through the same transformation as names, so "My_Lib" reserves
// "my-lib".
func NewSanitizer(reserved ...[]string) *Sanitizer {
	s := &Sanitizer{reserved: make(map[string]bool)}
	for _, list := range reserved {
		for _, id := range list {
			if id = hyphenate(id); id != "" {
				s.reserved[id] = true
			}
		}
	}
	return s
}

var defaultSanitizer = NewSanitizer(DefaultReserved())

// DefaultReserved returns a copy of NodeBuiltinModules.
func DefaultReserved() []string {
	return append([]string(nil), NodeBuiltinModules...)
}

// Sanitize uses the DefaultReserved set.
func Sanitize(name string) (PackageName, error) {
	return defaultSanitizer.Sanitize(name)
}

// IsReserved reports whether id, once sanitized, is in the reserved set.
func (s *Sanitizer) IsReserved(id string) bool {
	return s.reserved[hyphenate(id)]
}

// Sanitize derives a package identifier from name. The result is
// deterministic and idempotent: sanitizing a sanitized name returns it
// unchanged.
func (s *Sanitizer) Sanitize(name string) (PackageName, error) {
	out := hyphenate(name)

	if out == "" {
		return "", newError(KindEmptyAfterSanitization, name,
			"Package name cannot be empty after sanitization (from %q).", name)
	}
	if len(out) > MaxLength {
		return "", newError(KindSanitizationTooLong, name,
			"Package name too long: %d characters (max %d).", len(out), MaxLength)
	}
	if s.reserved[out] {
		return "", newError(KindReservedIdentifier, name,
			"Reserved package name %q: it collides with a built-in module.", out)
	}
	return PackageName(out), nil
}

// hyphenate trims and lowercases s, replaces every rune outside [a-z0-9-]
// with one hyphen and strips leading and trailing hyphens.
func hyphenate(s string) string {
	lowered := lowerASCII(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// lowerASCII folds A-Z only, so the result never depends on locale or
// Unicode special cases.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
