package xsderrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrMalformedDocument indicates the input could not be parsed as XML.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrNotASchema indicates the root element is not xs:schema.
	ErrNotASchema = errors.New("not a schema")

	// ErrNamingCollision indicates a name shared by declarations of different kinds.
	ErrNamingCollision = errors.New("naming collision")

	// ErrConflictingVariant indicates structurally different definitions of one name.
	ErrConflictingVariant = errors.New("conflicting variant")

	// ErrUnresolvedReference indicates a reference that could not be resolved.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrIO indicates a file system failure.
	ErrIO = errors.New("io failure")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// MalformedDocumentError represents a file that is not well-formed XML.
type MalformedDocumentError struct {
	// Path is the file path
	Path string
	// Line is the line number where parsing failed (0 if unknown)
	Line int
	// Column is the column where parsing failed (0 if unknown)
	Column int
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *MalformedDocumentError) Error() string {
	msg := "malformed document"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// NotASchemaError represents a well-formed XML file whose root is not a schema.
type NotASchemaError struct {
	// Path is the file path
	Path string
	// Root is the qualified name of the root element that was found
	Root string
}

// Error returns a human-readable error message.
func (e *NotASchemaError) Error() string {
	msg := "not a schema"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Root != "" {
		msg += fmt.Sprintf(" (root element is <%s>)", e.Root)
	} else {
		msg += " (no root element)"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *NotASchemaError) Is(target error) bool {
	return target == ErrNotASchema
}

// NamingCollisionError represents one name used by declarations of different
// kinds, either across scanned documents or against the common schema.
type NamingCollisionError struct {
	// Name is the contested name
	Name string
	// Kinds lists the distinct declaration kinds found, in sorted order
	Kinds []string
	// Paths lists the files involved
	Paths []string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *NamingCollisionError) Error() string {
	msg := "naming collision"
	if e.Name != "" {
		msg += fmt.Sprintf(" for %q", e.Name)
	}
	if len(e.Kinds) > 0 {
		msg += " between " + strings.Join(e.Kinds, " and ")
	}
	if len(e.Paths) > 0 {
		msg += " in " + strings.Join(e.Paths, ", ")
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *NamingCollisionError) Is(target error) bool {
	return target == ErrNamingCollision
}

// ConflictingVariantError represents a name with more than one distinct
// normalized definition.
type ConflictingVariantError struct {
	// Name is the declaration name
	Name string
	// Kind is the declaration kind
	Kind string
	// Variants is the number of distinct normalized definitions
	Variants int
	// Paths lists the contending files
	Paths []string
}

// Error returns a human-readable error message.
func (e *ConflictingVariantError) Error() string {
	msg := "conflicting variant"
	if e.Kind != "" {
		msg += " " + e.Kind
	}
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Variants > 0 {
		msg += fmt.Sprintf(": %d variants", e.Variants)
	}
	if len(e.Paths) > 0 {
		msg += " in " + strings.Join(e.Paths, ", ")
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ConflictingVariantError) Is(target error) bool {
	return target == ErrConflictingVariant
}

// UnresolvedReferenceError represents a reference value that matches neither a
// builtin type nor any declaration the pipeline knows about.
type UnresolvedReferenceError struct {
	// Path is the file containing the reference
	Path string
	// Line is the line of the referencing element (0 if unknown)
	Line int
	// Attr is the attribute holding the reference (type, base, ref, ...)
	Attr string
	// Value is the raw reference value
	Value string
}

// Error returns a human-readable error message.
func (e *UnresolvedReferenceError) Error() string {
	msg := "unresolved reference"
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Attr != "" {
		msg += fmt.Sprintf(" (%s)", e.Attr)
	}
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// IOError represents a file system failure for one path.
type IOError struct {
	// Path is the file or directory involved
	Path string
	// Op is the operation that failed: "read", "write", "backup", "walk"
	Op string
	// Cause is the underlying error
	Cause error
}

// Error returns a human-readable error message.
func (e *IOError) Error() string {
	msg := "io failure"
	if e.Op != "" {
		msg = e.Op + " failed"
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *IOError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// ConfigError represents an invalid configuration or option.
type ConfigError struct {
	// Option is the name of the invalid option
	Option string
	// Value is the offending value (may be nil)
	Value any
	// Message describes why the option is invalid
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
		if e.Value != nil {
			msg += fmt.Sprintf(" (%v)", e.Value)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
