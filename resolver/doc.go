// Package resolver decides which declarations move to the common schema.
//
// Declarations from every scanned document are grouped by symbol space and
// name. Each group becomes a [Candidate] and is classified:
//
//   - unique: one declaration outside the common schema. Promoted only when
//     the name is explicitly requested or another promoted declaration
//     depends on it.
//   - duplicate-identical: every copy has the same canonical content.
//     Promoted automatically.
//   - conflicting-variant: copies differ. Skipped unless auto-pick is
//     enabled or an override names the file to keep.
//   - naming-collision: the name is used by more than one declaration kind
//     (complexType and simpleType, or element and complexType), or is
//     declared twice in one document. Reported once per name and never
//     promoted.
//
// When a copy already exists in the common schema it is the canonical one.
// Otherwise copies are ranked by complexity score (higher first), tier root
// (earlier configured root first), path length (shorter first) and path
// (lexical), and the first wins.
//
// A promoted declaration may reference other declarations of its own
// namespace. Those are promoted with it when they can be; when one of them
// is a skipped conflict or a collision, the dependent candidate is blocked
// instead, so the common schema never refers back into a consumer
// namespace.
package resolver
