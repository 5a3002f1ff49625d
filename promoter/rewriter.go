package promoter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/mdraley/xsdtools/scanner"
	"github.com/mdraley/xsdtools/schema"
)

// Demote removes every direct-child declaration of doc with the given kind
// and name. It returns the number removed; zero is not an error.
func Demote(doc *schema.Document, kind schema.Kind, name string) int {
	removed := 0
	for _, c := range doc.Root().ChildElements() {
		if !schema.IsXSD(c, string(kind)) {
			continue
		}
		if n, _ := schema.LocalAttr(c, "name"); strings.TrimSpace(n) != name {
			continue
		}
		removeElement(c)
		removed++
	}
	if removed > 0 {
		doc.MarkModified()
	}
	return removed
}

// composition elements that must precede declarations in a schema.
var compositionTags = []string{"include", "import", "redefine", "override"}

// EnsureImport makes doc import namespace from location. When namespace is
// doc's own target namespace an include is ensured instead. An existing
// import of the namespace is reused and only its location is corrected; a
// new one is placed after the existing composition elements, before any
// declaration. It reports whether doc changed.
func EnsureImport(doc *schema.Document, namespace, location string) bool {
	if namespace == doc.TargetNamespace() {
		return ensureInclude(doc, location)
	}
	root := doc.Root()
	for _, c := range root.ChildElements() {
		if !schema.IsXSD(c, "import") {
			continue
		}
		if ns, _ := schema.LocalAttr(c, "namespace"); ns != namespace {
			continue
		}
		if location == "" {
			return false
		}
		return doc.SetAttr(c, "schemaLocation", location)
	}

	imp := etree.NewElement(qualify(doc.XSDPrefix(), "import"))
	if namespace != "" {
		imp.CreateAttr("namespace", namespace)
	}
	if location != "" {
		imp.CreateAttr("schemaLocation", location)
	}
	insertComposition(root, imp)
	doc.MarkModified()
	return true
}

func ensureInclude(doc *schema.Document, location string) bool {
	root := doc.Root()
	for _, c := range root.ChildElements() {
		if !schema.IsXSD(c, "include") {
			continue
		}
		if loc, _ := schema.LocalAttr(c, "schemaLocation"); loc == location {
			return false
		}
	}
	inc := etree.NewElement(qualify(doc.XSDPrefix(), "include"))
	inc.CreateAttr("schemaLocation", location)
	insertComposition(root, inc)
	doc.MarkModified()
	return true
}

// insertComposition places e after the last composition element of root,
// or before the first declaration when there is none.
func insertComposition(root, e *etree.Element) {
	var last, firstDecl *etree.Element
	for _, c := range root.ChildElements() {
		if schema.IsXSD(c, "") && slices.Contains(compositionTags, c.Tag) {
			last = c
			continue
		}
		if firstDecl == nil && !schema.IsXSD(c, "annotation") {
			firstDecl = c
		}
	}
	switch {
	case last != nil:
		insertAfter(last, e)
	case firstDecl != nil:
		insertBefore(firstDecl, e)
	default:
		appendElement(root, e)
	}
}

// bindPrefix returns a prefix bound to namespace on doc's schema element,
// declaring preferred (or preferred followed by a number) when none exists.
// Reserved prefixes are never redeclared.
func bindPrefix(doc *schema.Document, namespace, preferred string) string {
	root := doc.Root()
	if p, ok := schema.PrefixFor(root, namespace); ok && p != "" {
		return p
	}
	if preferred == "" || preferred == "xml" || preferred == "xmlns" {
		preferred = "ns"
	}
	candidate := preferred
	for i := 1; ; i++ {
		if _, taken := schema.LookupNamespace(root, candidate); !taken {
			break
		}
		candidate = preferred + strconv.Itoa(i)
	}
	doc.SetAttr(root, "xmlns:"+candidate, namespace)
	return candidate
}

// referencePrefix returns the prefix doc uses for namespace in reference
// values. The empty string means unprefixed values already resolve there.
func referencePrefix(doc *schema.Document, namespace, preferred string) string {
	root := doc.Root()
	if p, ok := schema.PrefixFor(root, namespace); ok {
		return p
	}
	return bindPrefix(doc, namespace, preferred)
}

// setReference replaces ref's value with value. List attributes keep their
// other entries.
func setReference(doc *schema.Document, ref *scanner.Reference, value string) bool {
	current, _ := schema.LocalAttr(ref.Element, ref.Attr)
	if ref.Attr != "memberTypes" {
		return doc.SetAttr(ref.Element, ref.Attr, value)
	}
	fields := strings.Fields(current)
	for i, f := range fields {
		if f == ref.Value {
			fields[i] = value
		}
	}
	return doc.SetAttr(ref.Element, ref.Attr, strings.Join(fields, " "))
}
