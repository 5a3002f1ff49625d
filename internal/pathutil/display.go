package pathutil

import (
	"path/filepath"
	"strings"
)

// Relative returns path relative to base, with forward slashes, when path
// lies under base.
func Relative(base, path string) (string, bool) {
	if base == "" {
		return "", false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Display returns path relative to the first of bases that contains it.
// Other paths are reduced to their base name.
func Display(bases []string, path string) string {
	for _, base := range bases {
		if rel, ok := Relative(base, path); ok {
			return rel
		}
	}
	return filepath.Base(path)
}
