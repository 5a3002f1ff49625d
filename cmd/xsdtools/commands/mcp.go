package commands

import (
	"context"
	"errors"
	"flag"

	"github.com/mdraley/xsdtools/internal/cliutil"
	"github.com/mdraley/xsdtools/internal/mcpserver"
)

// HandleMCP runs the MCP server over stdio until ctx is done or the client
// disconnects.
func HandleMCP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: xsdtools mcp\n\n")
		cliutil.Writef(fs.Output(), "Serve the scan_declarations, plan_promotion and find_collisions tools\n")
		cliutil.Writef(fs.Output(), "over the Model Context Protocol on stdin/stdout.\n\n")
		cliutil.Writef(fs.Output(), "Environment:\n")
		cliutil.Writef(fs.Output(), "  XSDTOOLS_MCP_GROUP_LIMIT   default page size of scan results (100)\n")
		cliutil.Writef(fs.Output(), "  XSDTOOLS_MCP_MAX_LIMIT     largest accepted page size (1000)\n")
		cliutil.Writef(fs.Output(), "  XSDTOOLS_MCP_WORKERS       documents loaded concurrently (4)\n")
		cliutil.Writef(fs.Output(), "  XSDTOOLS_MCP_AUTO_PICK     default of plan_promotion auto_pick\n")
		cliutil.Writef(fs.Output(), "  XSDTOOLS_MCP_FOLD_CASE     default of find_collisions fold_case\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	return mcpserver.Run(ctx)
}
