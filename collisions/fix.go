package collisions

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// DefaultFallbackSuffix is appended to a renamed declaration when its content
// shows no request or response affinity. {n} is replaced by a counter.
const DefaultFallbackSuffix = "_x{n}"

// Affinity suffixes.
const (
	SuffixRequest  = "_Rq"
	SuffixResponse = "_Rs"
)

// FixOptions configures Fix.
type FixOptions struct {
	// FallbackSuffix is the rename template used when no affinity is
	// detected. It must contain "{n}". Empty means DefaultFallbackSuffix.
	FallbackSuffix string
}

// Rename is one planned or applied change of a global declaration name.
type Rename struct {
	Kind schema.Kind `json:"kind" yaml:"kind"`
	Old  string      `json:"old" yaml:"old"`
	New  string      `json:"new" yaml:"new"`
	Line int         `json:"line,omitempty" yaml:"line,omitempty"`
}

// String returns "kind old -> new", followed by the line when known.
func (r Rename) String() string {
	s := string(r.Kind) + " " + r.Old + " -> " + r.New
	if r.Line > 0 {
		s += " (line " + strconv.Itoa(r.Line) + ")"
	}
	return s
}

// FixResult describes what Fix changed.
type FixResult struct {
	// Renames lists the renamed declarations in document order.
	Renames []Rename `json:"renames" yaml:"renames"`
	// References counts type, base and ref values naming a duplicated
	// name. They stay bound to the first declaration, which keeps its name.
	References int `json:"references" yaml:"references"`
}

// Fix renames every declaration but the first in each duplicate name group
// of doc. doc is modified in place; save it to persist the renames.
func Fix(doc *schema.Document, opts FixOptions) (*FixResult, error) {
	suffix := opts.FallbackSuffix
	if suffix == "" {
		suffix = DefaultFallbackSuffix
	}
	if !strings.Contains(suffix, "{n}") {
		return nil, &xsderrors.ConfigError{
			Option:  "fallback suffix",
			Value:   suffix,
			Message: `must contain "{n}"`,
		}
	}
	fallback := func(name string, n int) string {
		return name + strings.ReplaceAll(suffix, "{n}", strconv.Itoa(n))
	}

	decls := globals(doc)
	byName := make(map[string][]*etree.Element)
	taken := make(map[string]bool)
	for _, e := range decls {
		name, _ := schema.LocalAttr(e, "name")
		byName[name] = append(byName[name], e)
		taken[name] = true
	}

	renamed := make(map[*etree.Element]string)
	duplicated := make(map[string]bool)
	for _, e := range decls {
		name, _ := schema.LocalAttr(e, "name")
		group := byName[name]
		if len(group) < 2 || duplicated[name] {
			continue
		}
		duplicated[name] = true
		for i, dup := range group[1:] {
			n := i + 2
			candidate := fallback(name, n)
			if aff := affinity(dup); aff != "" {
				candidate = name + aff
			}
			for taken[candidate] {
				n++
				candidate = fallback(name, n)
			}
			taken[candidate] = true
			renamed[dup] = candidate
		}
	}

	res := &FixResult{}
	for _, e := range decls {
		name, ok := renamed[e]
		if !ok {
			continue
		}
		old, _ := schema.LocalAttr(e, "name")
		res.Renames = append(res.Renames, Rename{
			Kind: schema.Kind(e.Tag),
			Old:  old,
			New:  name,
			Line: doc.Line(e),
		})
		doc.SetAttr(e, "name", name)
	}
	if len(res.Renames) == 0 {
		return res, nil
	}

	eachReference(doc.Root(), func(_ *etree.Element, _, _, local string) {
		if duplicated[local] {
			res.References++
		}
	})
	return res, nil
}

// affinity guesses whether a declaration models a request or a response from
// the words its serialized content uses, including the text trailing its
// end tag. It returns "" when the signals are absent or too close to call.
func affinity(e *etree.Element) string {
	var sb strings.Builder
	e.WriteTo(&sb, &etree.WriteSettings{})
	sb.WriteString(e.Tail())
	blob := strings.ToLower(sb.String())
	rq := strings.Count(blob, "request") + strings.Count(blob, "rqecho") + strings.Count(blob, ">rq<")
	rs := strings.Count(blob, "response") + strings.Count(blob, "echoflag") + strings.Count(blob, ">rs<")

	walk(e, func(n *etree.Element) {
		for _, key := range []string{"name", "type", "base"} {
			v, _ := schema.LocalAttr(n, key)
			v = strings.ToLower(v)
			if strings.Contains(v, "rq") {
				rq++
			}
			if strings.Contains(v, "rs") {
				rs++
			}
		}
	})

	switch {
	case rq >= rs+2:
		return SuffixRequest
	case rs >= rq+2:
		return SuffixResponse
	case rq > rs && rq >= 2:
		return SuffixRequest
	case rs > rq && rs >= 2:
		return SuffixResponse
	}
	return ""
}

// referenceKeys are the attributes the collision tools treat as name
// references.
var referenceKeys = []string{"type", "base", "ref"}

// eachReference calls fn for every type, base and ref attribute in the
// subtree rooted at e.
func eachReference(e *etree.Element, fn func(n *etree.Element, key, prefix, local string)) {
	walk(e, func(n *etree.Element) {
		for _, key := range referenceKeys {
			v, ok := schema.LocalAttr(n, key)
			if !ok || v == "" {
				continue
			}
			prefix, local := schema.SplitQName(v)
			fn(n, key, prefix, local)
		}
	})
}

func walk(e *etree.Element, fn func(*etree.Element)) {
	fn(e)
	for _, c := range e.ChildElements() {
		walk(c, fn)
	}
}
