package collisions

import (
	"github.com/mdraley/xsdtools/internal/fileutil"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// Save writes doc to path atomically. The file mode of an existing file at
// path is kept.
func Save(doc *schema.Document, path string) error {
	data, err := doc.Bytes()
	if err != nil {
		return &xsderrors.IOError{Path: path, Op: "serialize", Cause: err}
	}
	if err := fileutil.WriteFileAtomic(path, data, fileutil.ModeOf(path, fileutil.ReadableByAll)); err != nil {
		return &xsderrors.IOError{Path: path, Op: "write", Cause: err}
	}
	return nil
}
