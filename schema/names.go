package schema

import "slices"

// Well-known namespace URIs.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema"
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
)

// Kind is the kind of a global declaration, named after its XSD element.
type Kind string

const (
	KindComplexType    Kind = "complexType"
	KindSimpleType     Kind = "simpleType"
	KindElement        Kind = "element"
	KindGroup          Kind = "group"
	KindAttributeGroup Kind = "attributeGroup"
	KindAttribute      Kind = "attribute"
)

// Kinds lists every declaration kind in a stable order.
var Kinds = []Kind{
	KindComplexType,
	KindSimpleType,
	KindElement,
	KindGroup,
	KindAttributeGroup,
	KindAttribute,
}

// ParseKind maps an XSD element local name to a declaration kind.
func ParseKind(local string) (Kind, bool) {
	k := Kind(local)
	if slices.Contains(Kinds, k) {
		return k, true
	}
	return "", false
}

// IsType reports whether k declares a type definition.
func (k Kind) IsType() bool {
	return k == KindComplexType || k == KindSimpleType
}

// Space returns the symbol space declarations of this kind are named in.
func (k Kind) Space() SymbolSpace {
	switch k {
	case KindComplexType, KindSimpleType:
		return SpaceType
	case KindElement:
		return SpaceElement
	case KindGroup:
		return SpaceGroup
	case KindAttributeGroup:
		return SpaceAttributeGroup
	case KindAttribute:
		return SpaceAttribute
	default:
		return ""
	}
}

// SymbolSpace is an XSD symbol space. Names must be unique within a space
// and namespace; the same name may appear in different spaces.
type SymbolSpace string

const (
	SpaceType           SymbolSpace = "type"
	SpaceElement        SymbolSpace = "element"
	SpaceGroup          SymbolSpace = "group"
	SpaceAttributeGroup SymbolSpace = "attributeGroup"
	SpaceAttribute      SymbolSpace = "attribute"
)

// builtinTypes are the type names predefined in the XML Schema namespace.
var builtinTypes = map[string]struct{}{
	"anyType": {}, "anySimpleType": {}, "anyAtomicType": {},
	"string": {}, "boolean": {}, "decimal": {}, "float": {}, "double": {},
	"duration": {}, "dateTime": {}, "time": {}, "date": {},
	"gYearMonth": {}, "gYear": {}, "gMonthDay": {}, "gDay": {}, "gMonth": {},
	"hexBinary": {}, "base64Binary": {}, "anyURI": {}, "QName": {}, "NOTATION": {},
	"normalizedString": {}, "token": {}, "language": {}, "Name": {}, "NCName": {},
	"ID": {}, "IDREF": {}, "IDREFS": {}, "ENTITY": {}, "ENTITIES": {},
	"NMTOKEN": {}, "NMTOKENS": {},
	"integer": {}, "long": {}, "int": {}, "short": {}, "byte": {},
	"nonNegativeInteger": {}, "positiveInteger": {},
	"unsignedLong": {}, "unsignedInt": {}, "unsignedShort": {}, "unsignedByte": {},
	"negativeInteger": {}, "nonPositiveInteger": {},
	"dateTimeStamp": {}, "dayTimeDuration": {}, "yearMonthDuration": {},
}

// IsBuiltin reports whether local names a builtin XML Schema type.
func IsBuiltin(local string) bool {
	_, ok := builtinTypes[local]
	return ok
}

// RefAttr describes one reference-bearing attribute: the XSD element it
// appears on, the attribute name, and the symbol space its value names.
type RefAttr struct {
	Element string
	Attr    string
	Space   SymbolSpace
	// List is true when the value is a whitespace-separated list of QNames.
	List bool
}

var referenceAttrs = []RefAttr{
	{Element: "element", Attr: "type", Space: SpaceType},
	{Element: "attribute", Attr: "type", Space: SpaceType},
	{Element: "restriction", Attr: "base", Space: SpaceType},
	{Element: "extension", Attr: "base", Space: SpaceType},
	{Element: "list", Attr: "itemType", Space: SpaceType},
	{Element: "union", Attr: "memberTypes", Space: SpaceType, List: true},
	{Element: "group", Attr: "ref", Space: SpaceGroup},
	{Element: "attributeGroup", Attr: "ref", Space: SpaceAttributeGroup},
	{Element: "element", Attr: "ref", Space: SpaceElement},
	{Element: "attribute", Attr: "ref", Space: SpaceAttribute},
}

// ReferenceAttrs returns the reference-bearing attributes of the XSD element
// with the given local name.
func ReferenceAttrs(local string) []RefAttr {
	var out []RefAttr
	for _, ra := range referenceAttrs {
		if ra.Element == local {
			out = append(out, ra)
		}
	}
	return out
}
