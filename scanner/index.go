package scanner

import (
	"slices"
	"strings"

	"github.com/mdraley/xsdtools/schema"
)

// NameKey groups declarations across documents: same symbol space and name,
// regardless of namespace.
type NameKey struct {
	Space schema.SymbolSpace
	Name  string
}

// Index collects the scan results of one run. It is built fresh for every
// run and handed to each stage explicitly.
type Index struct {
	// Results holds one entry per scanned document, in scan order.
	Results []*Result
	// Common is the scan of the common schema, if one was added.
	Common *Result

	byName  map[NameKey][]*Declaration
	byBare  map[string][]*Declaration
	byKey   map[Key][]*Declaration
	byDoc   map[*schema.Document]*Result
	problem map[NameKey]bool
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{
		byName:  make(map[NameKey][]*Declaration),
		byBare:  make(map[string][]*Declaration),
		byKey:   make(map[Key][]*Declaration),
		byDoc:   make(map[*schema.Document]*Result),
		problem: make(map[NameKey]bool),
	}
}

// Add records the scan of a consumer document.
func (x *Index) Add(r *Result) {
	x.Results = append(x.Results, r)
	x.add(r)
}

// SetCommon records the scan of the common schema. Its declarations are
// flagged InCommon.
func (x *Index) SetCommon(r *Result) {
	x.Common = r
	for _, d := range r.Declarations {
		d.InCommon = true
	}
	x.add(r)
}

func (x *Index) add(r *Result) {
	x.byDoc[r.Doc] = r
	for _, d := range r.Declarations {
		nk := NameKey{Space: d.Kind.Space(), Name: d.Name}
		x.byName[nk] = append(x.byName[nk], d)
		x.byBare[d.Name] = append(x.byBare[d.Name], d)
		x.byKey[d.Key()] = append(x.byKey[d.Key()], d)
	}
	for _, d := range duplicatedInDoc(r) {
		x.problem[d] = true
	}
}

func duplicatedInDoc(r *Result) []NameKey {
	seen := make(map[string]int)
	var out []NameKey
	for _, d := range r.Declarations {
		k := string(d.Kind) + "\x00" + d.Name
		seen[k]++
		if seen[k] == 2 {
			out = append(out, NameKey{Space: d.Kind.Space(), Name: d.Name})
		}
	}
	return out
}

// HasInDocumentDuplicate reports whether some document declares the same
// kind and name twice.
func (x *Index) HasInDocumentDuplicate(k NameKey) bool {
	return x.problem[k]
}

// NameKeys returns every (space, name) pair in sorted order.
func (x *Index) NameKeys() []NameKey {
	keys := make([]NameKey, 0, len(x.byName))
	for k := range x.byName {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b NameKey) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.Space), string(b.Space))
	})
	return keys
}

// ByName returns the declarations sharing a symbol space and name across
// every document, in scan order with the common schema last.
func (x *Index) ByName(k NameKey) []*Declaration {
	return x.byName[k]
}

// Named returns the declarations called name in every symbol space, in
// scan order with the common schema last.
func (x *Index) Named(name string) []*Declaration {
	return x.byBare[name]
}

// Kinds returns the distinct declaration kinds using name, sorted.
func (x *Index) Kinds(name string) []schema.Kind {
	var kinds []schema.Kind
	for _, d := range x.byBare[name] {
		if !slices.Contains(kinds, d.Kind) {
			kinds = append(kinds, d.Kind)
		}
	}
	slices.Sort(kinds)
	return kinds
}

// Lookup returns the declarations matching a resolved reference.
func (x *Index) Lookup(space schema.SymbolSpace, q schema.QName) []*Declaration {
	return x.byKey[Key{Space: space, Namespace: q.Namespace, Name: q.Local}]
}

// Result returns the scan of doc.
func (x *Index) Result(doc *schema.Document) *Result {
	return x.byDoc[doc]
}

// Declarations returns every declaration in scan order.
func (x *Index) Declarations() []*Declaration {
	var out []*Declaration
	for _, r := range x.Results {
		out = append(out, r.Declarations...)
	}
	if x.Common != nil {
		out = append(out, x.Common.Declarations...)
	}
	return out
}

// References returns every reference of the consumer documents in scan
// order.
func (x *Index) References() []*Reference {
	var out []*Reference
	for _, r := range x.Results {
		out = append(out, r.References...)
	}
	return out
}
