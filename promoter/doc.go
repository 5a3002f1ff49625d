// Package promoter moves type definitions shared by several XML Schema
// documents into one common schema and rewrites the documents to use it.
//
// A run scans every .xsd file under the configured roots, groups global
// declarations by symbol space and name, and promotes the groups that are
// duplicated across documents (or explicitly requested). The canonical copy
// is written into the common schema, every local copy is removed, and every
// reference to a moved declaration is re-qualified with the common
// namespace prefix. Each changed document gains an import of the common
// schema.
//
// # Quick Start
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
// Or build a reusable Promoter from a Config:
//
//	cfg := promoter.DefaultConfig()
//	cfg.Roots = []string{"schemas"}
//	cfg.CommonSchema = "schemas/common/Common.xsd"
//	cfg.Namespace = "urn:example:common"
//	result, err := promoter.New(cfg).Run(ctx)
//
// # Conflicts
//
// Declarations sharing a name but differing in content are conflicting
// variants. They are left untouched and written to the conflict report
// unless AutoPick is enabled or an override names the copy to keep. With
// AutoPick, the richest definition wins, then the earliest TierRoots entry,
// then the shorter path, then the lexically smaller path. A name used by
// more than one declaration kind, or declared twice in one document, is a
// naming collision and is never promoted.
//
// # Safety
//
// Every rewritten file is backed up once (suffix ".orig" by default) before
// its first write; later runs never overwrite the backup. Writes are atomic
// renames. Running the pipeline again over its own output changes nothing.
// Only one run may target a given common schema at a time.
package promoter
