// Package xsderrors provides structured error types for xsdtools.
//
// Every failure the promotion pipeline can report falls into one of a small
// number of categories. Each category has a sentinel for errors.Is and a
// typed error carrying the location details for errors.As.
//
// # Error Types
//
//   - MalformedDocumentError: the input is not well-formed XML
//   - NotASchemaError: the document root is not an xs:schema element
//   - NamingCollisionError: one name used by declarations of different kinds
//   - ConflictingVariantError: structurally different definitions share a name
//   - UnresolvedReferenceError: a reference that matches no known declaration
//   - IOError: missing files, permission problems, failed writes
//   - ConfigError: invalid options or configuration input
//
// # Sentinel Errors
//
//	doc, err := store.Load("orders.xsd")
//	if errors.Is(err, xsderrors.ErrNotASchema) {
//	    // skip the file, it is some other XML document
//	}
//
// Per-file errors are recorded by the promoter and never abort a run on their
// own; see promoter.Result.Failures.
package xsderrors
