package commands

import (
	"errors"
	"flag"
	"fmt"

	"github.com/mdraley/xsdtools/collisions"
	"github.com/mdraley/xsdtools/internal/cliutil"
	"github.com/mdraley/xsdtools/internal/pathutil"
	"github.com/mdraley/xsdtools/internal/termstyle"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// HandleCollisions dispatches the collisions subcommands.
func HandleCollisions(args []string) error {
	if len(args) == 0 {
		printCollisionsUsage()
		return fmt.Errorf("collisions requires a subcommand: find, fix, or finalize")
	}
	switch args[0] {
	case "find":
		return handleCollisionsFind(args[1:])
	case "fix":
		return handleCollisionsFix(args[1:])
	case "finalize":
		return handleCollisionsFinalize(args[1:])
	case "help", "-h", "--help":
		printCollisionsUsage()
		return nil
	default:
		printCollisionsUsage()
		return fmt.Errorf("unknown collisions subcommand: %s", args[0])
	}
}

func printCollisionsUsage() {
	cliutil.Writef(stderr, `Usage: xsdtools collisions <subcommand> [flags] <args>

Detect and repair global names shared by an element and a type in one
schema file. Binding generators map both to one class and fail on them.

Subcommands:
  find       List duplicate global names with kind and line
  fix        Rename all but the first declaration of each duplicate name
  finalize   Rename ambiguous type definitions of the original to <name>Type

Run 'xsdtools collisions <subcommand> --help' for more information.
`)
}

// loadSchema loads path and maps a non-schema root to exit status 2.
func loadSchema(path string) (*schema.Document, error) {
	doc, err := schema.NewStore().Load(path)
	if errors.Is(err, xsderrors.ErrNotASchema) {
		return nil, &ExitError{Code: 2, Err: err}
	}
	return doc, err
}

// CollisionsFindFlags contains flags for the collisions find command
type CollisionsFindFlags struct {
	FoldCase bool
	Format   string
}

// SetupCollisionsFindFlags creates and configures a FlagSet for collisions find.
func SetupCollisionsFindFlags() (*flag.FlagSet, *CollisionsFindFlags) {
	fs := flag.NewFlagSet("collisions find", flag.ContinueOnError)
	flags := &CollisionsFindFlags{}

	fs.BoolVar(&flags.FoldCase, "fold-case", false, "group names case-insensitively")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: xsdtools collisions find [flags] <file.xsd>\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Search completed (with or without duplicates)\n")
		cliutil.Writef(fs.Output(), "  1    The file could not be read or parsed\n")
		cliutil.Writef(fs.Output(), "  2    The root element is not xs:schema\n")
	}
	return fs, flags
}

func handleCollisionsFind(args []string) error {
	fs, flags := SetupCollisionsFindFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("collisions find requires exactly one schema file")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	doc, err := loadSchema(fs.Arg(0))
	if err != nil {
		return err
	}
	groups := collisions.Find(doc, collisions.FindOptions{FoldCase: flags.FoldCase})

	if flags.Format != FormatText {
		return OutputStructured(stdout, struct {
			File   string             `json:"file" yaml:"file"`
			Groups []collisions.Group `json:"groups" yaml:"groups"`
		}{fs.Arg(0), groups}, flags.Format)
	}

	st := termstyle.New(stdout)
	if len(groups) == 0 {
		cliutil.Writef(stdout, "%s\n", st.Success("✓ No duplicate global names found"))
		return nil
	}
	for _, g := range groups {
		cliutil.Writef(stdout, "%s\n", g)
	}
	cliutil.Writef(stdout, "%s\n", st.Warning(cliutil.Count(len(groups), "duplicate name group")+" found"))
	return nil
}

// CollisionsFixFlags contains flags for the collisions fix command
type CollisionsFixFlags struct {
	Output         string
	DryRun         bool
	FallbackSuffix string
	Quiet          bool
}

// SetupCollisionsFixFlags creates and configures a FlagSet for collisions fix.
func SetupCollisionsFixFlags() (*flag.FlagSet, *CollisionsFixFlags) {
	fs := flag.NewFlagSet("collisions fix", flag.ContinueOnError)
	flags := &CollisionsFixFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path")
	fs.StringVar(&flags.Output, "output", "", "output file path")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "print the planned renames without writing")
	fs.StringVar(&flags.FallbackSuffix, "fallback-suffix", collisions.DefaultFallbackSuffix, "rename template when no request/response affinity is found; {n} is a counter")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no rename listing")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no rename listing")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: xsdtools collisions fix [flags] -o <out.xsd> <in.xsd>\n\n")
		cliutil.Writef(fs.Output(), "The first declaration of each duplicate name keeps it. Later ones get\n")
		cliutil.Writef(fs.Output(), "%s or %s when their content looks like a request or response,\n", collisions.SuffixRequest, collisions.SuffixResponse)
		cliutil.Writef(fs.Output(), "otherwise the fallback suffix.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  xsdtools collisions fix -o Service.fixed.xsd Service.xsd\n")
		cliutil.Writef(fs.Output(), "  xsdtools collisions fix --dry-run --fallback-suffix _Dup{n} Service.xsd\n")
	}
	return fs, flags
}

func handleCollisionsFix(args []string) error {
	fs, flags := SetupCollisionsFixFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("collisions fix requires exactly one schema file")
	}
	output, err := outputPath(flags.Output, flags.DryRun)
	if err != nil {
		return err
	}

	doc, err := loadSchema(fs.Arg(0))
	if err != nil {
		return err
	}
	result, err := collisions.Fix(doc, collisions.FixOptions{FallbackSuffix: flags.FallbackSuffix})
	if err != nil {
		return err
	}

	st := termstyle.New(stderr)
	if !flags.Quiet {
		for _, r := range result.Renames {
			cliutil.Writef(stderr, "  %s\n", r)
		}
		if result.References > 0 {
			cliutil.Writef(stderr, "%s\n", st.Muted(cliutil.Count(result.References, "reference")+" still name the first declaration"))
		}
	}
	if flags.DryRun {
		cliutil.Writef(stderr, "%s\n", st.Warning("Dry run: "+cliutil.Count(len(result.Renames), "rename")+" planned"))
		return nil
	}
	if err := collisions.Save(doc, output); err != nil {
		return err
	}
	if !flags.Quiet {
		cliutil.Writef(stderr, "%s\n", st.Success("✓ "+cliutil.Count(len(result.Renames), "rename")+" written to "+output))
	}
	return nil
}

// CollisionsFinalizeFlags contains flags for the collisions finalize command
type CollisionsFinalizeFlags struct {
	Output string
	DryRun bool
	Quiet  bool
}

// SetupCollisionsFinalizeFlags creates and configures a FlagSet for collisions finalize.
func SetupCollisionsFinalizeFlags() (*flag.FlagSet, *CollisionsFinalizeFlags) {
	fs := flag.NewFlagSet("collisions finalize", flag.ContinueOnError)
	flags := &CollisionsFinalizeFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path")
	fs.StringVar(&flags.Output, "output", "", "output file path")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "print the planned renames without writing")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no rename listing")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no rename listing")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: xsdtools collisions finalize [flags] -o <out.xsd> <original.xsd> <fixed.xsd>\n\n")
		cliutil.Writef(fs.Output(), "Names renamed by 'collisions fix' mark their base name ambiguous. Each\n")
		cliutil.Writef(fs.Output(), "ambiguous type definition in the original becomes <name>%s and every\n", collisions.TypeSuffix)
		cliutil.Writef(fs.Output(), "type, base and ref value naming it is updated.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}
	return fs, flags
}

func handleCollisionsFinalize(args []string) error {
	fs, flags := SetupCollisionsFinalizeFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("collisions finalize requires the original and the fixed schema file")
	}
	output, err := outputPath(flags.Output, flags.DryRun)
	if err != nil {
		return err
	}

	original, err := loadSchema(fs.Arg(0))
	if err != nil {
		return err
	}
	fixed, err := loadSchema(fs.Arg(1))
	if err != nil {
		return err
	}
	result := collisions.Finalize(original, fixed)

	st := termstyle.New(stderr)
	if !flags.Quiet {
		for _, r := range result.Renames {
			cliutil.Writef(stderr, "  %s\n", r)
		}
		cliutil.Writef(stderr, "%s\n", st.Muted(cliutil.Count(len(result.Ambiguous), "ambiguous name")+", "+
			cliutil.Count(result.References, "reference")+" updated"))
	}
	if flags.DryRun {
		return nil
	}
	if err := collisions.Save(original, output); err != nil {
		return err
	}
	if !flags.Quiet {
		cliutil.Writef(stderr, "%s\n", st.Success("✓ Written to "+output))
	}
	return nil
}

// outputPath checks -o. It may be empty only for a dry run.
func outputPath(path string, dryRun bool) (string, error) {
	if path == "" {
		if dryRun {
			return "", nil
		}
		return "", fmt.Errorf("an output file is required (-o) unless --dry-run is set")
	}
	return pathutil.SanitizeOutputPath(path)
}
