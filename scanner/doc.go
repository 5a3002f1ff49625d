// Package scanner enumerates the global declarations and the references of
// schema documents and collects them into a per-run [Index].
//
// A declaration is a direct child of xs:schema that carries a name
// attribute. Nested and anonymous definitions are part of their enclosing
// declaration's content and are never declarations themselves.
//
// A reference is a QName-valued attribute anywhere in the document:
// type on element and attribute, base on restriction and extension, itemType
// on list, every entry of memberTypes on union, and ref on element,
// attribute, group and attributeGroup.
//
// Each declaration carries a canonical serialization of its content used to
// decide whether two same-named declarations are the same definition. The
// canonical form drops comments, id attributes and namespace declarations,
// collapses whitespace, sorts attributes, and writes reference values as
// resolved names so that prefix choice does not matter. References into the
// document's own target namespace are written relative to the document, so
// identical definitions in different namespaces compare equal.
//
// Scan has no side effects and returns the same result for an unchanged
// document.
package scanner
