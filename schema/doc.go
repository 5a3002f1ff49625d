// Package schema loads, inspects, and saves XML Schema (XSD) documents.
//
// A [Document] wraps an etree DOM of one schema file. It keeps element order,
// comments and whitespace so that a document saved without changes is not
// rewritten at all, and a document saved with changes differs from the input
// only where it was edited. Line numbers are recorded for every element at
// load time for diagnostics.
//
// # Loading and saving
//
// A [Store] reads and writes documents:
//
//	store := schema.NewStore()
//	doc, err := store.Load("schemas/orders.xsd")
//	if err != nil {
//	    // *xsderrors.MalformedDocumentError or *xsderrors.NotASchemaError
//	}
//	// ... mutate doc.Root() ...
//	doc.MarkModified()
//	saved, err := store.Save(doc)
//
// Save is a no-op for documents that were not modified or whose serialized
// bytes equal the bytes that were loaded. Before the first write to an
// existing file, the store copies the original bytes to path+BackupSuffix;
// an existing backup is never overwritten. The write itself goes to a
// temporary file in the same directory and is renamed over the target.
//
// Only one process may write a given set of files at a time. The store does
// not lock files.
//
// # Names
//
// Declaration kinds ([Kind]), symbol spaces ([SymbolSpace]), the builtin XSD
// type names ([IsBuiltin]) and the reference-bearing attributes
// ([ReferenceAttrs]) are defined here so that the scanner and the rewriter
// share one vocabulary.
//
// # Namespaces
//
// Prefix bindings are resolved through the element's ancestors, so a
// declaration nested under an element that rebinds a prefix resolves
// correctly. Use [Document.ResolveQName] for attribute values such as
// type="tns:OrderType".
package schema
