// Package xsdtools provides tools for consolidating XML Schema (XSD)
// documents whose type definitions were duplicated across many files.
//
// # Overview
//
// The library consists of these packages:
//
//   - schema: load, inspect and save schema documents with one-time backups
//   - scanner: index the global declarations and references of documents
//   - resolver: classify duplicated names and choose what to promote
//   - promoter: move shared definitions into a common schema and rewrite
//     every consumer to import it
//   - collisions: find and rename duplicate global names inside one file
//   - xsderrors: sentinel and typed errors shared by all packages
//
// # Quick Start
//
// Promote every type duplicated under a directory tree:
//
//	result, err := promoter.PromoteWithOptions(ctx,
//		promoter.WithRoots("schemas"),
//		promoter.WithCommonSchema("schemas/common/Common.xsd"),
//		promoter.WithNamespace("urn:example:common"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Summary)
//
// Find duplicate global names in one schema:
//
//	doc, err := schema.NewStore().Load("Service.xsd")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, g := range collisions.Find(doc, collisions.FindOptions{}) {
//		fmt.Println(g)
//	}
//
// # Command Line
//
// The xsdtools command wraps the same packages:
//
//	xsdtools promote -common schemas/common/Common.xsd -namespace urn:example:common schemas
//	xsdtools scan schemas
//	xsdtools collisions find Service.xsd
//	xsdtools mcp
//
// See the promoter package for details on conflicts, reports and safety.
package xsdtools
