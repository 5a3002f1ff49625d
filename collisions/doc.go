// Package collisions finds and repairs duplicate global names inside a
// single XML Schema document.
//
// Binding generators map a global element and a global type of the same
// name to one class, so a file that declares both (or declares one name
// twice) cannot be compiled as-is. The package works in three steps:
//
//   - Find lists every name used by more than one global element,
//     complexType or simpleType.
//   - Fix keeps the first declaration of each group and renames the rest,
//     using an _Rq or _Rs suffix when the content looks like a request or a
//     response, and a numbered fallback suffix otherwise.
//   - Finalize compares the original file with the fixed one and renames
//     the ambiguous type definitions in the original to <name>Type,
//     updating every reference.
//
// # Example
//
//	doc, err := schema.NewStore().Load("Service.xsd")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, g := range collisions.Find(doc, collisions.FindOptions{}) {
//		fmt.Println(g)
//	}
package collisions
