// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes xsdtools capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mdraley/xsdtools"
	"github.com/mdraley/xsdtools/schema"
)

const serverInstructions = `xsdtools MCP server: inspects XML Schema (XSD) trees for duplicated declarations, plans their promotion into a common schema, and finds duplicate global names inside one schema file.

All tools are read-only. plan_promotion performs a dry run: it never writes schema files, backups or reports.

Configuration: defaults are configurable via XSDTOOLS_MCP_* environment variables set in your MCP client config.
- XSDTOOLS_MCP_GROUP_LIMIT (default: 100): default result limit for scan_declarations
- XSDTOOLS_MCP_MAX_LIMIT (default: 1000): upper bound for any limit
- XSDTOOLS_MCP_WORKERS (default: 4): documents loaded concurrently
- XSDTOOLS_MCP_AUTO_PICK (default: false): resolve conflicting variants by ranking in plan_promotion
- XSDTOOLS_MCP_FOLD_CASE (default: false): group names case-insensitively in find_collisions`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "xsdtools", Version: xsdtools.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_declarations",
		Description: "Scan directories of XSD files and list every global declaration name that occurs more than once, classified as duplicate-identical (safe to promote), conflicting-variant (same name, different content) or naming-collision (different kinds, or repeated in one file). Each occurrence carries its file, line and variant number. Use class to filter and offset/limit to paginate. Default limit is configurable via XSDTOOLS_MCP_GROUP_LIMIT.",
	}, handleScanDeclarations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_promotion",
		Description: "Dry-run the common-type promotion pipeline: which declarations would move into the common schema, which local copies would be removed, which files would be rewritten, and the conflict report rows. Requires dirs, common (path of the common schema, created if missing) and namespace (its target namespace). Nothing is written.",
	}, handlePlanPromotion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_collisions",
		Description: "Find duplicate global names among the element, complexType and simpleType declarations of one XSD file. Binding generators map all three to classes, so any shared name is reported. Use fold_case to also catch names differing only in case.",
	}, handleFindCollisions)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.GroupLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.GroupLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// fileFailure is a document that could not be read.
type fileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// parseKinds converts kind names, rejecting unknown ones.
func parseKinds(names []string) ([]schema.Kind, error) {
	kinds := makeSlice[schema.Kind](len(names))
	for _, n := range names {
		k, ok := schema.ParseKind(n)
		if !ok {
			return nil, fmt.Errorf("invalid kind %q; valid kinds: %v", n, schema.Kinds)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
