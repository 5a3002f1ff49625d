package schema

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"

	"github.com/beevik/etree"

	"github.com/mdraley/xsdtools/xsderrors"
)

// Document is one parsed schema file.
//
// A Document is not safe for concurrent mutation.
type Document struct {
	// Path is the file path the document was loaded from and is saved to.
	Path string

	tree     *etree.Document
	original []byte
	lines    map[*etree.Element]int
	modified bool
	exists   bool
}

// Parse parses data as a schema document. path is recorded for diagnostics
// and for Save; the file is not read.
func Parse(path string, data []byte) (*Document, error) {
	tree := etree.NewDocument()
	tree.ReadSettings.PreserveCData = true
	tree.ReadSettings.CharsetReader = charsetReader
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, malformed(path, err)
	}
	root := tree.Root()
	if root == nil {
		return nil, &xsderrors.MalformedDocumentError{Path: path, Message: "no root element"}
	}
	if !IsXSD(root, "schema") {
		return nil, &xsderrors.NotASchemaError{Path: path, Root: root.FullTag()}
	}
	tree.WriteSettings.CanonicalText = true
	tree.WriteSettings.CanonicalAttrVal = true

	return &Document{
		Path:     path,
		tree:     tree,
		original: data,
		lines:    elementLines(tree, data),
		exists:   true,
	}, nil
}

func malformed(path string, err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return &xsderrors.MalformedDocumentError{Path: path, Line: syn.Line, Message: syn.Msg}
	}
	return &xsderrors.MalformedDocumentError{Path: path, Cause: err}
}

// Root returns the xs:schema element.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// TargetNamespace returns the document's target namespace, or "" for a
// no-namespace schema.
func (d *Document) TargetNamespace() string {
	v, _ := LocalAttr(d.Root(), "targetNamespace")
	return v
}

// Prefixes returns the namespace bindings declared on the schema element.
// The default namespace is keyed by "".
func (d *Document) Prefixes() map[string]string {
	out := make(map[string]string)
	for _, a := range d.Root().Attr {
		switch {
		case a.Space == "xmlns":
			out[a.Key] = a.Value
		case a.Space == "" && a.Key == "xmlns":
			out[""] = a.Value
		}
	}
	return out
}

// XSDPrefix returns the prefix the schema element binds to the XML Schema
// namespace. It returns "" when XSD is the default namespace.
func (d *Document) XSDPrefix() string {
	p, _ := PrefixFor(d.Root(), XSDNamespace)
	return p
}

// Line returns the line e started on in the loaded file, or 0 for elements
// created after loading.
func (d *Document) Line(e *etree.Element) int {
	return d.lines[e]
}

// SetAttr sets attribute key on e and marks the document modified when the
// value changes. key may carry a prefix, as in "xmlns:c".
func (d *Document) SetAttr(e *etree.Element, key, value string) bool {
	space, local := SplitQName(key)
	for _, a := range e.Attr {
		if a.Space == space && a.Key == local {
			if a.Value == value {
				return false
			}
			break
		}
	}
	e.CreateAttr(key, value)
	d.modified = true
	return true
}

// Modified reports whether the document was changed since loading.
func (d *Document) Modified() bool {
	return d.modified
}

// MarkModified flags the document for saving.
func (d *Document) MarkModified() {
	d.modified = true
}

// Exists reports whether the document was loaded from an existing file.
func (d *Document) Exists() bool {
	return d.exists
}

// Original returns the bytes the document was parsed from.
func (d *Document) Original() []byte {
	return d.original
}

// Bytes serializes the document. A non-UTF-8 encoding in the XML declaration
// is replaced, since output is always UTF-8.
func (d *Document) Bytes() ([]byte, error) {
	for _, tok := range d.tree.Child {
		pi, ok := tok.(*etree.ProcInst)
		if !ok || pi.Target != "xml" {
			continue
		}
		if enc := pseudoAttr(pi.Inst, "encoding"); enc != "" && !strings.EqualFold(enc, "utf-8") {
			pi.Inst = strings.Replace(pi.Inst, enc, "UTF-8", 1)
		}
		break
	}
	var buf bytes.Buffer
	if _, err := d.tree.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Changed reports whether the serialized document differs from the loaded
// bytes.
func (d *Document) Changed() (bool, error) {
	if !d.exists {
		return true, nil
	}
	out, err := d.Bytes()
	if err != nil {
		return false, err
	}
	return !bytes.Equal(out, d.original), nil
}

func pseudoAttr(inst, key string) string {
	i := strings.Index(inst, key+"=")
	if i < 0 || i+len(key)+1 >= len(inst) {
		return ""
	}
	rest := inst[i+len(key)+1:]
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return ""
	}
	return rest[1 : end+1]
}
