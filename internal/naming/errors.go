package naming

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrInvalidName  = errors.New("invalid project name")
	ErrSanitization = errors.New("package name sanitization failed")
)

// Kind identifies the specific rule a name broke.
type Kind string

// Project name validation kinds. These are recoverable: an interactive caller
// re-prompts.
const (
	KindEmptyName          Kind = "empty_name"
	KindTooLong            Kind = "too_long"
	KindDotName            Kind = "dot_name"
	KindReservedName       Kind = "reserved_name"
	KindTrailingSpaceOrDot Kind = "trailing_space_or_dot"
	KindInvalidCharacters  Kind = "invalid_characters"
	KindPathTraversal      Kind = "path_traversal"
)

// Package name sanitization kinds. These abort the current run.
const (
	KindEmptyAfterSanitization Kind = "empty_after_sanitization"
	KindSanitizationTooLong    Kind = "sanitization_too_long"
	KindReservedIdentifier     Kind = "reserved_identifier"
)

// Error is returned by Validate and Sanitize.
type Error struct {
	Kind    Kind
	Input   string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Unwrap maps the kind onto its family sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Kind.IsSanitization() {
		return ErrSanitization
	}
	return ErrInvalidName
}

// IsSanitization reports whether k belongs to the sanitization family.
func (k Kind) IsSanitization() bool {
	switch k {
	case KindEmptyAfterSanitization, KindSanitizationTooLong, KindReservedIdentifier:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// IsKind reports whether err is a naming error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind == kind
	}
	return false
}

// KindOf returns the kind of a naming error, or "" when err is not one.
func KindOf(err error) Kind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return ""
}

func newError(kind Kind, input, format string, args ...any) *Error {
	return &Error{Kind: kind, Input: input, Message: fmt.Sprintf(format, args...)}
}
