package scanner

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/unicode/norm"

	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// selfMarker stands in for a namespace treated as "this document's own" in
// canonical content.
const selfMarker = "{.}"

// Key identifies a declaration by symbol space, namespace and name.
type Key struct {
	Space     schema.SymbolSpace
	Namespace string
	Name      string
}

// String returns the key as space:{namespace}name.
func (k Key) String() string {
	return string(k.Space) + ":" + schema.QName{Namespace: k.Namespace, Local: k.Name}.String()
}

// Declaration is one global declaration of a scanned document.
type Declaration struct {
	Kind      schema.Kind
	Name      string
	Namespace string
	Doc       *schema.Document
	Element   *etree.Element
	Line      int

	// Canonical is the normalized content used for comparison.
	Canonical string
	// Hash is the FNV-64a hash of Canonical.
	Hash uint64
	// Score weighs element count, attribute count and content length.
	Score int

	// Refs are the references inside this declaration.
	Refs []*Reference
	// InCommon is true for declarations of the common schema.
	InCommon bool
}

// Key returns the declaration's lookup key.
func (d *Declaration) Key() Key {
	return Key{Space: d.Kind.Space(), Namespace: d.Namespace, Name: d.Name}
}

// Path returns the path of the owning document.
func (d *Declaration) Path() string {
	return d.Doc.Path
}

// Reference is one QName in a reference-bearing attribute.
type Reference struct {
	Element *etree.Element
	Attr    string
	// Value is the lexical QName as written. For memberTypes this is a
	// single list entry.
	Value  string
	Prefix string
	Target schema.QName
	// Bound is false when Prefix is not declared in scope.
	Bound bool
	Space schema.SymbolSpace
	Line  int
	// Owner is the enclosing global declaration, if any.
	Owner *Declaration
}

// Result is the scan of one document.
type Result struct {
	Doc          *schema.Document
	Declarations []*Declaration
	References   []*Reference
	// Problems lists declarations whose (kind, name) repeats within the
	// document.
	Problems []error
}

// Options tune canonicalization.
type Options struct {
	// SelfNamespaces are written like the document's own target namespace
	// in canonical content. The common schema namespace belongs here so a
	// local copy that already references common types still matches the
	// common copy.
	SelfNamespaces []string
}

// Scan enumerates the declarations and references of doc.
func Scan(doc *schema.Document, opts Options) *Result {
	res := &Result{Doc: doc}
	tns := doc.TargetNamespace()
	self := append([]string{tns}, opts.SelfNamespaces...)
	seen := make(map[string]*Declaration)

	for _, child := range doc.Root().ChildElements() {
		var owner *Declaration
		if kind, ok := declarationKind(child); ok {
			name, _ := schema.LocalAttr(child, "name")
			if name = strings.TrimSpace(name); name != "" {
				c := canonicalizer{self: self}
				canon := c.canonical(child)
				owner = &Declaration{
					Kind:      kind,
					Name:      name,
					Namespace: tns,
					Doc:       doc,
					Element:   child,
					Line:      doc.Line(child),
					Canonical: canon,
					Hash:      hashString(canon),
					Score:     10*c.elements + 3*c.attrs + len(canon),
				}
				dupKey := string(kind) + "\x00" + name
				if first, dup := seen[dupKey]; dup {
					res.Problems = append(res.Problems, &xsderrors.NamingCollisionError{
						Name:    name,
						Kinds:   []string{string(kind)},
						Paths:   []string{doc.Path},
						Message: fmt.Sprintf("declared again at line %d (first at line %d)", owner.Line, first.Line),
					})
				} else {
					seen[dupKey] = owner
				}
				res.Declarations = append(res.Declarations, owner)
			}
		}
		collectRefs(doc, child, owner, &res.References)
	}
	return res
}

func declarationKind(e *etree.Element) (schema.Kind, bool) {
	if !schema.IsXSD(e, "") {
		return "", false
	}
	return schema.ParseKind(e.Tag)
}

func collectRefs(doc *schema.Document, e *etree.Element, owner *Declaration, out *[]*Reference) {
	if schema.IsXSD(e, "") {
		for _, ra := range schema.ReferenceAttrs(e.Tag) {
			raw, ok := schema.LocalAttr(e, ra.Attr)
			if !ok {
				continue
			}
			values := []string{raw}
			if ra.List {
				values = strings.Fields(raw)
			}
			for _, v := range values {
				v = strings.TrimSpace(v)
				if v == "" {
					continue
				}
				prefix, _ := schema.SplitQName(v)
				target, bound := schema.ResolveQName(e, v)
				ref := &Reference{
					Element: e,
					Attr:    ra.Attr,
					Value:   v,
					Prefix:  prefix,
					Target:  target,
					Bound:   bound,
					Space:   ra.Space,
					Line:    doc.Line(e),
					Owner:   owner,
				}
				*out = append(*out, ref)
				if owner != nil {
					owner.Refs = append(owner.Refs, ref)
				}
			}
		}
	}
	for _, c := range e.ChildElements() {
		collectRefs(doc, c, owner, out)
	}
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// canonicalizer writes the normalized form of a declaration subtree and
// counts what it wrote.
type canonicalizer struct {
	self     []string
	elements int
	attrs    int
	sb       strings.Builder
}

func (c *canonicalizer) canonical(e *etree.Element) string {
	c.element(e)
	return norm.NFC.String(c.sb.String())
}

func (c *canonicalizer) element(e *etree.Element) {
	c.elements++
	c.sb.WriteByte('<')
	c.sb.WriteString(c.name(schema.ElementNamespace(e), e.Tag))

	refAttrs := map[string]schema.RefAttr{}
	if schema.IsXSD(e, "") {
		for _, ra := range schema.ReferenceAttrs(e.Tag) {
			refAttrs[ra.Attr] = ra
		}
	}

	type kv struct{ k, v string }
	var attrs []kv
	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		if a.Space == "" && a.Key == "id" {
			continue
		}
		key := a.Key
		if a.Space != "" {
			ns, _ := schema.LookupNamespace(e, a.Space)
			key = c.name(ns, a.Key)
		}
		value := collapse(a.Value)
		if ra, ok := refAttrs[a.Key]; ok && a.Space == "" {
			value = c.qnames(e, value, ra.List)
		}
		attrs = append(attrs, kv{key, value})
	}
	slices.SortFunc(attrs, func(x, y kv) int { return strings.Compare(x.k, y.k) })
	for _, a := range attrs {
		c.attrs++
		c.sb.WriteByte(' ')
		c.sb.WriteString(a.k)
		c.sb.WriteString(`="`)
		c.sb.WriteString(a.v)
		c.sb.WriteByte('"')
	}
	c.sb.WriteByte('>')

	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.Element:
			c.element(t)
		case *etree.CharData:
			if text := collapse(t.Data); text != "" {
				c.sb.WriteString(text)
			}
		}
	}
	c.sb.WriteString("</>")
}

func (c *canonicalizer) name(ns, local string) string {
	switch {
	case ns == schema.XSDNamespace:
		return "{xsd}" + local
	case slices.Contains(c.self, ns):
		return selfMarker + local
	case ns == "":
		return local
	default:
		return "{" + ns + "}" + local
	}
}

func (c *canonicalizer) qnames(e *etree.Element, value string, list bool) string {
	fields := []string{value}
	if list {
		fields = strings.Fields(value)
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		q, ok := schema.ResolveQName(e, f)
		if !ok {
			out[i] = "{?" + f + "}"
			continue
		}
		out[i] = c.name(q.Namespace, q.Local)
	}
	return strings.Join(out, " ")
}

// collapse trims s and replaces runs of whitespace with one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
