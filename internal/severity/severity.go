// Package severity provides the severity levels attached to warnings and
// findings reported by the promoter and collisions packages.
//
// The levels are ordered from least to most severe for filtering purposes:
// Info < Warning < Error < Critical
package severity

// Severity indicates how serious a reported issue is.
type Severity int

const (
	// SeverityError indicates a document that could not be processed, such
	// as a malformed file or a failed write.
	SeverityError Severity = iota

	// SeverityWarning indicates a declaration or reference that was left
	// untouched and needs attention, such as a skipped conflict.
	SeverityWarning

	// SeverityInfo indicates a change that was made as requested.
	SeverityInfo

	// SeverityCritical indicates a run-level failure that stopped the
	// pipeline before anything was written.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Rank orders levels from least (0) to most severe (3). Unknown values rank
// below Info.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Parse maps a level name to a Severity.
func Parse(name string) (Severity, bool) {
	switch name {
	case "info":
		return SeverityInfo, true
	case "warning", "warn":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	case "critical":
		return SeverityCritical, true
	default:
		return 0, false
	}
}
