package promoter

import (
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/mdraley/xsdtools/scanner"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// commonWriter maintains the common schema document.
type commonWriter struct {
	doc       *schema.Document
	namespace string
	prefix    string
	// moved holds the keys of every demoted declaration.
	moved map[scanner.Key]bool
	// headerDone is set once the header has been written in this run.
	headerDone bool
}

func newCommonWriter(doc *schema.Document, namespace, prefix string) *commonWriter {
	return &commonWriter{
		doc:       doc,
		namespace: namespace,
		prefix:    prefix,
		moved:     make(map[scanner.Key]bool),
	}
}

// ensureHeader sets the target namespace, the form defaults and the prefix
// binding for the common namespace. Values are overwritten, so the call is
// idempotent. It returns the previous target namespace when it changed.
func (w *commonWriter) ensureHeader() (previous string, changed bool) {
	if w.headerDone {
		return "", false
	}
	w.headerDone = true
	root := w.doc.Root()
	previous = w.doc.TargetNamespace()
	changed = w.doc.SetAttr(root, "targetNamespace", w.namespace) && previous != ""
	w.doc.SetAttr(root, "elementFormDefault", "qualified")
	w.doc.SetAttr(root, "attributeFormDefault", "unqualified")
	w.doc.SetAttr(root, "xmlns:"+w.prefix, w.namespace)
	return previous, changed
}

// stripSelfReferences removes imports and includes that target the common
// document itself. It returns the number removed.
func (w *commonWriter) stripSelfReferences() int {
	self, _ := filepath.Abs(w.doc.Path)
	dir := filepath.Dir(self)
	removed := 0
	for _, c := range w.doc.Root().ChildElements() {
		if !schema.IsXSD(c, "import") && !schema.IsXSD(c, "include") {
			continue
		}
		target := false
		if c.Tag == "import" {
			ns, _ := schema.LocalAttr(c, "namespace")
			target = ns == w.namespace
		}
		if loc, ok := schema.LocalAttr(c, "schemaLocation"); ok && !isURL(loc) {
			if filepath.Clean(filepath.Join(dir, filepath.FromSlash(loc))) == self {
				target = true
			}
		}
		if target {
			removeElement(c)
			removed++
		}
	}
	if removed > 0 {
		w.doc.MarkModified()
	}
	return removed
}

// existing returns the common declaration with the given space and name.
func (w *commonWriter) existing(space schema.SymbolSpace, name string) *etree.Element {
	for _, c := range w.doc.Root().ChildElements() {
		if !schema.IsXSD(c, "") {
			continue
		}
		kind, ok := schema.ParseKind(c.Tag)
		if !ok || kind.Space() != space {
			continue
		}
		if n, _ := schema.LocalAttr(c, "name"); strings.TrimSpace(n) == name {
			return c
		}
	}
	return nil
}

// check reports a naming collision when the common schema holds a
// declaration of a different kind under decl's name in the same symbol
// space.
func (w *commonWriter) check(decl *scanner.Declaration) error {
	if decl.InCommon {
		return nil
	}
	e := w.existing(decl.Kind.Space(), decl.Name)
	if e == nil || e.Tag == string(decl.Kind) {
		return nil
	}
	return &xsderrors.NamingCollisionError{
		Name:    decl.Name,
		Kinds:   []string{e.Tag, string(decl.Kind)},
		Paths:   []string{w.doc.Path, decl.Path()},
		Message: "common schema already holds a different kind",
	}
}

// promote copies decl into the common document unless a declaration of the
// same space and name is already there. It reports whether a copy was
// added. Callers run check first.
func (w *commonWriter) promote(decl *scanner.Declaration) bool {
	if decl.InCommon || w.existing(decl.Kind.Space(), decl.Name) != nil {
		return false
	}
	w.ensureHeader()
	cp := decl.Element.Copy()
	w.relocate(decl, decl.Element, cp)
	appendElement(w.doc.Root(), cp)
	w.doc.MarkModified()
	return true
}

// relocate rewrites the prefixes and reference values of cp, a copy of orig
// taken from decl's document, so that they mean the same thing inside the
// common document.
func (w *commonWriter) relocate(decl *scanner.Declaration, orig, cp *etree.Element) {
	ns := schema.ElementNamespace(orig)
	switch {
	case ns == schema.XSDNamespace:
		cp.Space = w.doc.XSDPrefix()
	case orig.Space != "":
		cp.Space = bindPrefix(w.doc, ns, orig.Space)
	}

	refs := map[string]schema.RefAttr{}
	if ns == schema.XSDNamespace {
		for _, ra := range schema.ReferenceAttrs(orig.Tag) {
			refs[ra.Attr] = ra
		}
		if orig.Tag == "keyref" {
			refs["refer"] = schema.RefAttr{Element: "keyref", Attr: "refer"}
		}
	}

	attrs := cp.Attr[:0]
	for _, a := range cp.Attr {
		switch {
		case a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns"):
			// Bindings are re-established on the common schema element.
			continue
		case a.Space != "" && a.Space != "xml":
			ans, _ := schema.LookupNamespace(orig, a.Space)
			a.Space = bindPrefix(w.doc, ans, a.Space)
		case a.Space == "":
			if ra, ok := refs[a.Key]; ok {
				a.Value = w.relocateValue(decl, orig, ra, a.Value)
			}
		}
		attrs = append(attrs, a)
	}
	cp.Attr = attrs

	origChildren := orig.ChildElements()
	for i, c := range cp.ChildElements() {
		w.relocate(decl, origChildren[i], c)
	}
}

func (w *commonWriter) relocateValue(decl *scanner.Declaration, orig *etree.Element, ra schema.RefAttr, value string) string {
	fields := []string{value}
	if ra.List {
		fields = strings.Fields(value)
	}
	for i, f := range fields {
		q, ok := schema.ResolveQName(orig, f)
		if !ok {
			continue
		}
		key := scanner.Key{Space: ra.Space, Namespace: q.Namespace, Name: q.Local}
		switch {
		case q.Namespace == schema.XSDNamespace:
			fields[i] = qualify(w.doc.XSDPrefix(), q.Local)
		case q.Namespace == w.namespace, q.Namespace == decl.Namespace, w.moved[key]:
			fields[i] = qualify(w.prefix, q.Local)
		case q.Namespace == "":
			fields[i] = q.Local
		default:
			srcPrefix, _ := schema.SplitQName(f)
			fields[i] = qualify(bindPrefix(w.doc, q.Namespace, srcPrefix), q.Local)
			EnsureImport(w.doc, q.Namespace, w.importLocation(decl.Doc, q.Namespace))
		}
	}
	return strings.Join(fields, " ")
}

// importLocation translates the location src uses for namespace into a
// location relative to the common document.
func (w *commonWriter) importLocation(src *schema.Document, namespace string) string {
	for _, c := range src.Root().ChildElements() {
		if !schema.IsXSD(c, "import") {
			continue
		}
		if ns, _ := schema.LocalAttr(c, "namespace"); ns != namespace {
			continue
		}
		loc, ok := schema.LocalAttr(c, "schemaLocation")
		if !ok || loc == "" {
			return ""
		}
		if isURL(loc) {
			return loc
		}
		abs := filepath.Join(filepath.Dir(src.Path), filepath.FromSlash(loc))
		return relativeLocation(w.doc.Path, abs)
	}
	return ""
}

// relativeLocation returns target as a slash-separated path relative to the
// directory of from.
func relativeLocation(from, target string) string {
	fromAbs, err1 := filepath.Abs(from)
	targetAbs, err2 := filepath.Abs(target)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(filepath.Dir(fromAbs), targetAbs)
	if err != nil {
		return filepath.ToSlash(targetAbs)
	}
	return filepath.ToSlash(rel)
}

func isURL(loc string) bool {
	return strings.Contains(loc, "://")
}
