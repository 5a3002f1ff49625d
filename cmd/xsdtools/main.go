package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/mdraley/xsdtools"
	"github.com/mdraley/xsdtools/cmd/xsdtools/commands"
)

// validCommands lists every top-level command, for typo suggestions.
var validCommands = []string{"promote", "scan", "collisions", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := os.Args[1]
	var err error

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("xsdtools v%s\n", xsdtools.Version())
		fmt.Printf("commit: %s\n", xsdtools.Commit())
		fmt.Printf("built: %s\n", xsdtools.BuildTime())
		fmt.Printf("go: %s\n", xsdtools.GoVersion())
	case "help", "-h", "--help":
		printUsage()
	case "promote":
		err = commands.HandlePromote(ctx, os.Args[2:])
	case "scan":
		err = commands.HandleScan(ctx, os.Args[2:])
	case "collisions":
		err = commands.HandleCollisions(os.Args[2:])
	case "mcp":
		err = commands.HandleMCP(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		stop()
		os.Exit(1)
	}

	if err != nil {
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode prints err and returns the process exit status for it.
func exitCode(err error) int {
	var exit *commands.ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exit.Err)
		}
		return exit.Code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// suggestCommand returns the valid command closest to input, or "" when
// none is within two edits.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, cmd := range validCommands {
		if d := editDistance(input, cmd); d < bestDist {
			best, bestDist = cmd, d
		}
	}
	return best
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`xsdtools - XML Schema maintenance tools

Usage:
  xsdtools <command> [options]

Commands:
  promote     Move duplicated declarations into a common schema and rewrite consumers
  scan        Report declarations shared between schema files
  collisions  Find and repair duplicate global names inside one schema file
  mcp         Serve xsdtools as MCP tools over stdio
  version     Show version information
  help        Show this help message

Examples:
  xsdtools scan schemas
  xsdtools promote --common schemas/Common.xsd --namespace urn:acme:common schemas
  xsdtools promote --dry-run --auto-pick schemas
  xsdtools collisions find Service.xsd
  xsdtools collisions fix -o Service.fixed.xsd Service.xsd

Run 'xsdtools <command> --help' for more information on a command.`)
}
