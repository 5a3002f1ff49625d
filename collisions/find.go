package collisions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"

	"github.com/mdraley/xsdtools/schema"
)

// Occurrence is one global declaration taking part in a collision group.
type Occurrence struct {
	Name string      `json:"name" yaml:"name"`
	Kind schema.Kind `json:"kind" yaml:"kind"`
	Line int         `json:"line,omitempty" yaml:"line,omitempty"`
}

// String returns "kind" or "kind:line".
func (o Occurrence) String() string {
	if o.Line > 0 {
		return string(o.Kind) + ":" + strconv.Itoa(o.Line)
	}
	return string(o.Kind)
}

// Group is a name shared by two or more global declarations.
type Group struct {
	// Name is the spelling of the first occurrence.
	Name        string       `json:"name" yaml:"name"`
	Occurrences []Occurrence `json:"occurrences" yaml:"occurrences"`
}

// String returns a one-line summary such as "Foo (2): element:3, complexType:9".
func (g Group) String() string {
	locs := make([]string, len(g.Occurrences))
	for i, o := range g.Occurrences {
		locs[i] = o.String()
	}
	return fmt.Sprintf("%s (%d): %s", g.Name, len(g.Occurrences), strings.Join(locs, ", "))
}

// FindOptions configures Find.
type FindOptions struct {
	// FoldCase groups names case-insensitively, using Unicode case folding.
	FoldCase bool
}

// globalKinds are the declarations that map to generated classes.
var globalKinds = []schema.Kind{schema.KindElement, schema.KindComplexType, schema.KindSimpleType}

// Find returns the duplicate name groups of doc, sorted by name.
func Find(doc *schema.Document, opts FindOptions) []Group {
	fold := cases.Fold()
	key := func(name string) string {
		if opts.FoldCase {
			return fold.String(name)
		}
		return name
	}

	byKey := make(map[string]*Group)
	var order []string
	for _, e := range globals(doc) {
		name, _ := schema.LocalAttr(e, "name")
		k := key(name)
		g, ok := byKey[k]
		if !ok {
			g = &Group{Name: name}
			byKey[k] = g
			order = append(order, k)
		}
		g.Occurrences = append(g.Occurrences, Occurrence{
			Name: name,
			Kind: schema.Kind(e.Tag),
			Line: doc.Line(e),
		})
	}

	var out []Group
	for _, k := range order {
		if g := byKey[k]; len(g.Occurrences) > 1 {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// globals returns the named element, complexType and simpleType children of
// the schema element in document order.
func globals(doc *schema.Document) []*etree.Element {
	var out []*etree.Element
	for _, e := range doc.Root().ChildElements() {
		if !isGlobalKind(e) {
			continue
		}
		if _, ok := schema.LocalAttr(e, "name"); ok {
			out = append(out, e)
		}
	}
	return out
}

func isGlobalKind(e *etree.Element) bool {
	for _, k := range globalKinds {
		if schema.IsXSD(e, string(k)) {
			return true
		}
	}
	return false
}
