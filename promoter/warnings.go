package promoter

import (
	"fmt"
	"strings"

	"github.com/mdraley/xsdtools/internal/severity"
)

// WarningCategory identifies the type of warning.
type WarningCategory string

const (
	// WarnDuplicateInDocument indicates a name declared twice in one document.
	WarnDuplicateInDocument WarningCategory = "duplicate_in_document"
	// WarnNamingCollision indicates a name used by different declaration kinds.
	WarnNamingCollision WarningCategory = "naming_collision"
	// WarnConflictSkipped indicates conflicting variants were left in place.
	WarnConflictSkipped WarningCategory = "conflict_skipped"
	// WarnConflictResolved indicates conflicting variants were resolved by
	// ranking or override.
	WarnConflictResolved WarningCategory = "conflict_resolved"
	// WarnBlockedDependency indicates a declaration was held back because a
	// declaration it references cannot be promoted.
	WarnBlockedDependency WarningCategory = "blocked_dependency"
	// WarnUnresolvedReference indicates a reference that resolves nowhere
	// after the run.
	WarnUnresolvedReference WarningCategory = "unresolved_reference"
	// WarnSelfReferenceRemoved indicates the common schema imported itself.
	WarnSelfReferenceRemoved WarningCategory = "self_reference_removed"
	// WarnFileFailed indicates a document could not be read, parsed or written.
	WarnFileFailed WarningCategory = "file_failed"
	// WarnNamespaceChanged indicates the common schema's target namespace was
	// replaced.
	WarnNamespaceChanged WarningCategory = "namespace_changed"
	// WarnDeclarationPromoted records a declaration moved to the common schema.
	WarnDeclarationPromoted WarningCategory = "declaration_promoted"
)

// Warning is a structured, non-fatal finding of a promotion run.
type Warning struct {
	// Category identifies the type of warning.
	Category WarningCategory
	// Path is kind:name of the affected declaration, when there is one.
	Path string
	// Message is a human-readable description.
	Message string
	// SourceFile is the document that triggered the warning.
	SourceFile string
	// Line is the 1-based line number (0 if unknown).
	Line int
	// Severity indicates warning severity.
	Severity severity.Severity
	// Context provides additional details.
	Context map[string]any
}

// String returns the warning message.
func (w *Warning) String() string {
	return w.Message
}

// HasLocation returns true if source location information is available.
func (w *Warning) HasLocation() bool {
	return w.Line > 0
}

// Location returns an IDE-friendly location string.
func (w *Warning) Location() string {
	if w.Line == 0 {
		if w.SourceFile != "" {
			return w.SourceFile
		}
		return w.Path
	}
	if w.SourceFile != "" {
		return fmt.Sprintf("%s:%d", w.SourceFile, w.Line)
	}
	return fmt.Sprintf("%d", w.Line)
}

func declPath(kind, name string) string {
	return kind + ":" + name
}

// NewDuplicateInDocumentWarning creates a warning for a name declared twice
// in the same document.
func NewDuplicateInDocumentWarning(kind, name, file string, line int) *Warning {
	return &Warning{
		Category:   WarnDuplicateInDocument,
		Path:       declPath(kind, name),
		Message:    fmt.Sprintf("%s '%s' is declared more than once in %s", kind, name, file),
		SourceFile: file,
		Line:       line,
		Severity:   severity.SeverityWarning,
	}
}

// NewNamingCollisionWarning creates a warning for a name shared by different
// kinds of declaration.
func NewNamingCollisionWarning(name string, kinds, files []string) *Warning {
	return &Warning{
		Category: WarnNamingCollision,
		Path:     declPath(strings.Join(kinds, "/"), name),
		Message: fmt.Sprintf("'%s' is declared as %s in %s; not promoted",
			name, strings.Join(kinds, " and "), strings.Join(files, ", ")),
		Severity: severity.SeverityWarning,
		Context: map[string]any{
			"kinds": kinds,
			"files": files,
		},
	}
}

// NewConflictSkippedWarning creates a warning for conflicting variants left
// in place.
func NewConflictSkippedWarning(kind, name string, variants int, files []string) *Warning {
	return &Warning{
		Category: WarnConflictSkipped,
		Path:     declPath(kind, name),
		Message: fmt.Sprintf("%s '%s' has %d conflicting variants in %s; skipped",
			kind, name, variants, strings.Join(files, ", ")),
		Severity: severity.SeverityWarning,
		Context: map[string]any{
			"variants": variants,
			"files":    files,
		},
	}
}

// NewConflictResolvedWarning creates a warning for conflicting variants
// resolved in favor of chosen.
func NewConflictResolvedWarning(kind, name, resolution, chosen string, others []string) *Warning {
	return &Warning{
		Category: WarnConflictResolved,
		Path:     declPath(kind, name),
		Message: fmt.Sprintf("%s '%s' %s: kept %s over %s",
			kind, name, resolution, chosen, strings.Join(others, ", ")),
		SourceFile: chosen,
		Severity:   severity.SeverityWarning,
		Context: map[string]any{
			"resolution": resolution,
			"others":     others,
		},
	}
}

// NewBlockedDependencyWarning creates a warning for a declaration held back
// by one of its dependencies.
func NewBlockedDependencyWarning(kind, name string, cause error) *Warning {
	return &Warning{
		Category: WarnBlockedDependency,
		Path:     declPath(kind, name),
		Message:  fmt.Sprintf("%s '%s' not promoted: %v", kind, name, cause),
		Severity: severity.SeverityWarning,
	}
}

// NewUnresolvedReferenceWarning creates a warning for a reference that
// resolves to no declaration.
func NewUnresolvedReferenceWarning(attr, value, file string, line int) *Warning {
	return &Warning{
		Category:   WarnUnresolvedReference,
		Message:    fmt.Sprintf("%s=\"%s\" does not resolve in %s", attr, value, file),
		SourceFile: file,
		Line:       line,
		Severity:   severity.SeverityWarning,
		Context: map[string]any{
			"attr":  attr,
			"value": value,
		},
	}
}

// NewSelfReferenceRemovedWarning creates a warning when the common schema's
// imports of itself are removed.
func NewSelfReferenceRemovedWarning(file string, count int) *Warning {
	return &Warning{
		Category:   WarnSelfReferenceRemoved,
		Message:    fmt.Sprintf("removed %d self import(s) from %s", count, file),
		SourceFile: file,
		Severity:   severity.SeverityInfo,
	}
}

// NewFileFailedWarning creates a warning for a document that was skipped.
func NewFileFailedWarning(file string, err error) *Warning {
	return &Warning{
		Category:   WarnFileFailed,
		Message:    fmt.Sprintf("%s skipped: %v", file, err),
		SourceFile: file,
		Severity:   severity.SeverityError,
	}
}

// NewNamespaceChangedWarning creates a warning when the common schema's
// target namespace is replaced.
func NewNamespaceChangedWarning(file, previous, current string) *Warning {
	return &Warning{
		Category:   WarnNamespaceChanged,
		Message:    fmt.Sprintf("targetNamespace of %s changed from '%s' to '%s'", file, previous, current),
		SourceFile: file,
		Severity:   severity.SeverityWarning,
		Context: map[string]any{
			"previous": previous,
			"current":  current,
		},
	}
}

// NewDeclarationPromotedWarning records a declaration moved to the common
// schema.
func NewDeclarationPromotedWarning(kind, name, resolution, from string, line int) *Warning {
	return &Warning{
		Category:   WarnDeclarationPromoted,
		Path:       declPath(kind, name),
		Message:    fmt.Sprintf("%s '%s' promoted from %s (%s)", kind, name, from, resolution),
		SourceFile: from,
		Line:       line,
		Severity:   severity.SeverityInfo,
		Context: map[string]any{
			"resolution": resolution,
		},
	}
}

// Warnings is a collection of Warning.
type Warnings []*Warning

// Strings returns the warning messages.
func (ws Warnings) Strings() []string {
	result := make([]string, len(ws))
	for i, w := range ws {
		if w == nil {
			continue
		}
		result[i] = w.String()
	}
	return result
}

// ByCategory filters warnings by category.
func (ws Warnings) ByCategory(cat WarningCategory) Warnings {
	var result Warnings
	for _, w := range ws {
		if w.Category == cat {
			result = append(result, w)
		}
	}
	return result
}

// BySeverity filters warnings by severity.
func (ws Warnings) BySeverity(sev severity.Severity) Warnings {
	var result Warnings
	for _, w := range ws {
		if w.Severity == sev {
			result = append(result, w)
		}
	}
	return result
}

// AtLeast returns the warnings at least as severe as min.
func (ws Warnings) AtLeast(min severity.Severity) Warnings {
	var result Warnings
	for _, w := range ws {
		if w.Severity.AtLeast(min) {
			result = append(result, w)
		}
	}
	return result
}

// Summary returns a formatted summary of warnings.
func (ws Warnings) Summary() string {
	if len(ws) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d warning(s):\n", len(ws))
	for _, w := range ws {
		sb.WriteString("  - ")
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
