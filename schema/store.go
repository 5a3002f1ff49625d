package schema

import (
	"errors"
	"io/fs"
	"os"

	"github.com/beevik/etree"

	"github.com/mdraley/xsdtools/internal/fileutil"
	"github.com/mdraley/xsdtools/xsderrors"
)

// DefaultBackupSuffix is appended to a file path to form its backup path.
const DefaultBackupSuffix = ".orig"

// Store loads and saves schema documents.
type Store struct {
	// BackupSuffix is appended to the path of an existing file to form the
	// path of its one-time backup. Empty disables backups.
	BackupSuffix string
	// DryRun makes Save report what it would write without touching disk.
	DryRun bool
	// Logger receives debug output for skipped and completed writes.
	Logger Logger
}

// NewStore returns a Store with the default backup suffix.
func NewStore() *Store {
	return &Store{
		BackupSuffix: DefaultBackupSuffix,
		Logger:       NopLogger{},
	}
}

// SaveResult describes what Save did.
type SaveResult struct {
	// Written is true when the file content was (or, in dry-run mode, would
	// be) replaced.
	Written bool
	// BackupPath is set when a backup was taken during this save.
	BackupPath string
}

// Load reads and parses the schema file at path.
func (s *Store) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &xsderrors.IOError{Path: path, Op: "read", Cause: err}
	}
	return Parse(path, data)
}

// LoadOrCreate loads path, or returns a new empty schema with the given
// target namespace when path does not exist. A new document is not written
// until it is modified and saved.
func (s *Store) LoadOrCreate(path, targetNamespace string) (*Document, error) {
	doc, err := s.Load(path)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	data, err := newSchemaBytes(targetNamespace)
	if err != nil {
		return nil, &xsderrors.IOError{Path: path, Op: "create", Cause: err}
	}
	doc, err = Parse(path, data)
	if err != nil {
		return nil, err
	}
	doc.exists = false
	doc.original = nil
	s.logger().Debug("creating new schema document", "path", path)
	return doc, nil
}

// Save writes doc back to its path when it was modified and its content
// changed. The first write to an existing file is preceded by a backup of
// the bytes it was loaded from.
func (s *Store) Save(doc *Document) (SaveResult, error) {
	var res SaveResult
	if !doc.Modified() {
		return res, nil
	}
	data, err := doc.Bytes()
	if err != nil {
		return res, &xsderrors.IOError{Path: doc.Path, Op: "serialize", Cause: err}
	}
	if doc.exists && string(data) == string(doc.original) {
		s.logger().Debug("content unchanged, skipping write", "path", doc.Path)
		return res, nil
	}
	res.Written = true
	if s.DryRun {
		return res, nil
	}

	perm := fileutil.ModeOf(doc.Path, fileutil.ReadableByAll)
	if doc.exists && s.BackupSuffix != "" {
		backup := doc.Path + s.BackupSuffix
		taken, err := fileutil.WriteFileOnce(backup, doc.original, perm)
		if err != nil {
			return SaveResult{}, &xsderrors.IOError{Path: backup, Op: "backup", Cause: err}
		}
		if taken {
			res.BackupPath = backup
			s.logger().Info("backup written", "path", backup)
		}
	}

	if err := fileutil.WriteFileAtomic(doc.Path, data, perm); err != nil {
		return SaveResult{}, &xsderrors.IOError{Path: doc.Path, Op: "write", Cause: err}
	}
	doc.original = data
	doc.exists = true
	doc.modified = false
	return res, nil
}

func (s *Store) logger() Logger {
	if s.Logger == nil {
		return NopLogger{}
	}
	return s.Logger
}

func newSchemaBytes(targetNamespace string) ([]byte, error) {
	tree := etree.NewDocument()
	tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	tree.CreateText("\n")
	root := tree.CreateElement("xs:schema")
	root.CreateAttr("xmlns:xs", XSDNamespace)
	if targetNamespace != "" {
		root.CreateAttr("targetNamespace", targetNamespace)
	}
	root.CreateAttr("elementFormDefault", "qualified")
	root.CreateAttr("attributeFormDefault", "unqualified")
	root.SetText("\n")
	tree.CreateText("\n")
	return tree.WriteToBytes()
}
