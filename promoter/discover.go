package promoter

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdraley/xsdtools/xsderrors"
)

// Discover returns the schema files under roots plus the extra files, sorted
// and without duplicates. Hidden directories and the exclude paths are
// skipped. Roots or extra files that cannot be read are returned as errors;
// discovery continues past them.
func Discover(roots, extra, exclude []string) ([]string, []error) {
	skip := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	seen := make(map[string]bool)
	var files []string
	var errs []error
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if skip[abs] || seen[abs] {
			return
		}
		seen[abs] = true
		files = append(files, filepath.Clean(p))
	}

	for _, root := range roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, &xsderrors.IOError{Path: p, Op: "walk", Cause: err})
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}
			if isSchemaFile(d.Name()) {
				add(p)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, &xsderrors.IOError{Path: root, Op: "walk", Cause: err})
		}
	}

	for _, p := range extra {
		info, err := os.Stat(p)
		if err != nil {
			errs = append(errs, &xsderrors.IOError{Path: p, Op: "stat", Cause: err})
			continue
		}
		if !info.IsDir() {
			add(p)
		}
	}

	slices.Sort(files)
	return files, errs
}

func isSchemaFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xsd")
}
