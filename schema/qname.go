package schema

import (
	"strings"

	"github.com/beevik/etree"
)

// QName is a namespace-qualified name.
type QName struct {
	Namespace string
	Local     string
}

// String returns the name in {namespace}local notation.
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// SplitQName splits a lexical QName into prefix and local part.
func SplitQName(value string) (prefix, local string) {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, ':'); i >= 0 {
		return value[:i], value[i+1:]
	}
	return "", value
}

// LookupNamespace returns the namespace bound to prefix in the scope of e.
// The empty prefix resolves to the default namespace, or to no namespace
// when none is declared.
func LookupNamespace(e *etree.Element, prefix string) (string, bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	for cur := e; cur != nil; cur = cur.Parent() {
		for _, a := range cur.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value, true
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value, true
			}
		}
	}
	if prefix == "" {
		return "", true
	}
	return "", false
}

// PrefixFor returns a prefix bound to uri in the scope of e. The empty
// prefix is returned only when uri is the default namespace and no named
// prefix is available.
func PrefixFor(e *etree.Element, uri string) (string, bool) {
	defaultMatch := false
	for cur := e; cur != nil; cur = cur.Parent() {
		for _, a := range cur.Attr {
			if a.Space == "xmlns" && a.Value == uri {
				if ns, _ := LookupNamespace(e, a.Key); ns == uri {
					return a.Key, true
				}
			}
		}
	}
	if ns, _ := LookupNamespace(e, ""); ns == uri && uri != "" {
		defaultMatch = true
	}
	return "", defaultMatch
}

// ResolveQName resolves a lexical QName appearing in an attribute value of e.
// It returns false when the prefix is not bound.
func ResolveQName(e *etree.Element, value string) (QName, bool) {
	prefix, local := SplitQName(value)
	ns, ok := LookupNamespace(e, prefix)
	if !ok {
		return QName{Local: local}, false
	}
	return QName{Namespace: ns, Local: local}, true
}

// ElementNamespace returns the namespace URI of e's own name.
func ElementNamespace(e *etree.Element) string {
	ns, _ := LookupNamespace(e, e.Space)
	return ns
}

// IsXSD reports whether e is an element of the XML Schema namespace with the
// given local name. An empty local matches any XSD element.
func IsXSD(e *etree.Element, local string) bool {
	if local != "" && e.Tag != local {
		return false
	}
	return ElementNamespace(e) == XSDNamespace
}

// LocalAttr returns the value of the unprefixed attribute key on e.
// etree's SelectAttr matches prefixed attributes too, which is wrong for
// schema attributes like name and type.
func LocalAttr(e *etree.Element, key string) (string, bool) {
	for _, a := range e.Attr {
		if a.Space == "" && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
