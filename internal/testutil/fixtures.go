// Package testutil provides test utilities and fixtures for unit tests.
//
// Multi-file schema fixtures are written as txtar archives:
//
//	dir := testutil.WriteTree(t, `
//	-- Service/orders.xsd --
//	<xs:schema .../>
//	-- Root/common.xsd --
//	<xs:schema .../>
//	`)
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// XSDHeader opens a schema element with the xs prefix bound and the given
// target namespace bound to tns.
func XSDHeader(targetNamespace string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:tns="` + targetNamespace + `" targetNamespace="` + targetNamespace + `" elementFormDefault="qualified">
`
}

// WriteTree extracts a txtar archive into a fresh temporary directory and
// returns the directory.
func WriteTree(t testing.TB, archive string) string {
	t.Helper()
	dir := t.TempDir()
	WriteTreeAt(t, dir, archive)
	return dir
}

// WriteTreeAt extracts a txtar archive into dir.
func WriteTreeAt(t testing.TB, dir, archive string) {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	if len(ar.Files) == 0 {
		t.Fatal("testutil: archive has no files")
	}
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("testutil: mkdir: %v", err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("testutil: write %s: %v", f.Name, err)
		}
	}
}

// ReadTree returns every regular file under dir keyed by slash-separated
// relative path.
func ReadTree(t testing.TB, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("testutil: read tree: %v", err)
	}
	return out
}

// ReadFile reads a file relative to dir.
func ReadFile(t testing.TB, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("testutil: read %s: %v", rel, err)
	}
	return string(data)
}
