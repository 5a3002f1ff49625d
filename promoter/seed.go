package promoter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/mdraley/xsdtools/xsderrors"
)

// LoadSeedNames reads a class discovery report and returns the class names
// that occur in two or more packages, sorted.
//
// The report is either CSV with a header row naming "File" and "Package"
// columns, or a YAML or JSON mapping of file name to package name. File
// names may carry a directory and an extension; only the base name counts.
func LoadSeedNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &xsderrors.IOError{Path: path, Op: "read seed report", Cause: err}
	}
	var entries map[string]string
	switch strings.ToLower(strings.TrimPrefix(pathExt(path), ".")) {
	case "csv":
		entries, err = parseSeedCSV(data)
	default:
		err = yaml.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, &xsderrors.ConfigError{Option: "seed report", Value: path, Cause: err}
	}
	return SeedNames(entries), nil
}

// SeedNames returns the class base names of entries (file -> package) that
// appear under at least two distinct packages.
func SeedNames(entries map[string]string) []string {
	packages := make(map[string][]string)
	for file, pkg := range entries {
		name := className(file)
		if name == "" {
			continue
		}
		if !slices.Contains(packages[name], pkg) {
			packages[name] = append(packages[name], pkg)
		}
	}
	var names []string
	for name, pkgs := range packages {
		if len(pkgs) >= 2 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func parseSeedCSV(data []byte) (map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	fileCol, pkgCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "file", "filename", "file name":
			fileCol = i
		case "package", "packagename", "package name":
			pkgCol = i
		}
	}
	if fileCol < 0 || pkgCol < 0 {
		return nil, errors.New("header must name File and Package columns")
	}

	entries := make(map[string]string)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if fileCol >= len(row) || pkgCol >= len(row) {
			continue
		}
		// The same class name in one package may be listed under several
		// paths; keying on the full path keeps them all.
		key := strings.TrimSpace(row[fileCol]) + "\x00" + strings.TrimSpace(row[pkgCol])
		entries[key] = strings.TrimSpace(row[pkgCol])
	}
	return entries, nil
}

// className strips directories, the key suffix added by parseSeedCSV and
// the extension from file.
func className(file string) string {
	if i := strings.IndexByte(file, 0); i >= 0 {
		file = file[:i]
	}
	file = strings.ReplaceAll(strings.TrimSpace(file), `\`, "/")
	base := path.Base(file)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func pathExt(p string) string {
	return path.Ext(strings.ReplaceAll(p, `\`, "/"))
}
