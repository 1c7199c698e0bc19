package naming

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxLength is the longest project or package name accepted, matching the
// npm registry limit.
const MaxLength = 214

// Validate reports whether name can be used as a project directory name.
// It returns nil for a valid name and a *Error otherwise. Checks run in a
// fixed order and the first failure wins, so the returned message is stable
// for a given input.
func Validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return newError(KindEmptyName, name, "Project name cannot be empty.")
	}
	if utf8.RuneCountInString(name) > MaxLength {
		return newError(KindTooLong, name, "Project name must be at most %d characters.", MaxLength)
	}
	if name == "." || name == ".." {
		return newError(KindDotName, name, `Project name cannot be "." or "..".`)
	}
	if IsWindowsReservedName(name) {
		return newError(KindReservedName, name, "Project name %q is a reserved Windows filename.", name)
	}
	if strings.HasSuffix(name, " ") || strings.HasSuffix(name, ".") {
		return newError(KindTrailingSpaceOrDot, name, "Project name cannot end with a space or a period.")
	}
	if !hasOnlyNameChars(name) {
		return newError(KindInvalidCharacters, name,
			"Project name can only contain letters, numbers, hyphens, underscores, and periods.")
	}
	// Names that pass the character check are always local, so this only
	// fires if that check is loosened.
	return checkLocal(name)
}

// checkLocal rejects names that are absolute or climb out of the working
// directory once joined to it.
func checkLocal(name string) error {
	if !filepath.IsLocal(name) {
		return newError(KindPathTraversal, name, "Project name %q must stay inside the current directory.", name)
	}
	return nil
}

// IsValid is Validate(name) == nil.
func IsValid(name string) bool {
	return Validate(name) == nil
}

// hasOnlyNameChars reports whether every rune is in [A-Za-z0-9_.-].
func hasOnlyNameChars(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
