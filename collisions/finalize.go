package collisions

import (
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/mdraley/xsdtools/schema"
)

// TypeSuffix is appended to an ambiguous type definition by Finalize.
const TypeSuffix = "Type"

// FinalizeResult describes what Finalize changed.
type FinalizeResult struct {
	// Ambiguous lists the base names recovered from the fixed file, sorted.
	Ambiguous []string `json:"ambiguous" yaml:"ambiguous"`
	// Renames lists the renamed type definitions in document order.
	Renames []Rename `json:"renames" yaml:"renames"`
	// References counts the updated type, base and ref values.
	References int `json:"references" yaml:"references"`
}

// Finalize renames the ambiguous type definitions of original, using fixed
// (the output of Fix for the same file) to learn which names were
// ambiguous. A name is ambiguous when fixed declares a renamed variant of it:
// a global name absent from original whose part before "_x" or "_R" is the
// base name. Each ambiguous complexType and simpleType in original becomes
// <name>Type, and every type, base and ref value naming it is updated, with
// its prefix kept. original is modified in place.
func Finalize(original, fixed *schema.Document) *FinalizeResult {
	before := globalNames(original)
	ambiguous := make(map[string]bool)
	for name := range globalNames(fixed) {
		if before[name] {
			continue
		}
		if base, ok := baseName(name); ok {
			ambiguous[base] = true
		}
	}

	res := &FinalizeResult{}
	for name := range ambiguous {
		res.Ambiguous = append(res.Ambiguous, name)
	}
	sort.Strings(res.Ambiguous)
	if len(ambiguous) == 0 {
		return res
	}

	for _, e := range globals(original) {
		if !schema.IsXSD(e, string(schema.KindComplexType)) && !schema.IsXSD(e, string(schema.KindSimpleType)) {
			continue
		}
		name, _ := schema.LocalAttr(e, "name")
		if !ambiguous[name] {
			continue
		}
		res.Renames = append(res.Renames, Rename{
			Kind: schema.Kind(e.Tag),
			Old:  name,
			New:  name + TypeSuffix,
			Line: original.Line(e),
		})
		original.SetAttr(e, "name", name+TypeSuffix)
	}

	eachReference(original.Root(), func(n *etree.Element, key, prefix, local string) {
		if !ambiguous[local] {
			return
		}
		v := local + TypeSuffix
		if prefix != "" {
			v = prefix + ":" + v
		}
		original.SetAttr(n, key, v)
		res.References++
	})
	return res
}

// baseName strips a fallback or affinity suffix from a renamed name.
func baseName(name string) (string, bool) {
	if base, _, ok := strings.Cut(name, "_x"); ok {
		return base, true
	}
	if base, _, ok := strings.Cut(name, "_R"); ok {
		return base, true
	}
	return "", false
}

func globalNames(doc *schema.Document) map[string]bool {
	out := make(map[string]bool)
	for _, e := range globals(doc) {
		name, _ := schema.LocalAttr(e, "name")
		out[name] = true
	}
	return out
}
