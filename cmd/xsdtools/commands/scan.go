package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/mdraley/xsdtools/internal/cliutil"
	"github.com/mdraley/xsdtools/internal/pathutil"
	"github.com/mdraley/xsdtools/internal/termstyle"
	"github.com/mdraley/xsdtools/promoter"
	"github.com/mdraley/xsdtools/resolver"
	"github.com/mdraley/xsdtools/schema"
)

// ScanFlags contains flags for the scan command
type ScanFlags struct {
	Files   listFlag
	Kinds   listFlag
	Class   string
	Workers int
	Format  string
}

// SetupScanFlags creates and configures a FlagSet for the scan command.
// Returns the FlagSet and a ScanFlags struct with bound flag variables.
func SetupScanFlags() (*flag.FlagSet, *ScanFlags) {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	flags := &ScanFlags{}

	fs.Var(&flags.Files, "file", "additional .xsd file (repeatable)")
	fs.Var(&flags.Kinds, "kinds", "declaration kinds to report, comma-separated (default: all)")
	fs.StringVar(&flags.Class, "class", "", "only groups of this class: duplicate-identical, conflicting-variant, naming-collision")
	fs.IntVar(&flags.Workers, "workers", promoter.DefaultWorkers, "documents loaded concurrently")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: xsdtools scan [flags] <root...>\n\n")
		cliutil.Writef(fs.Output(), "Report global declarations shared between schema files without changing them.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  xsdtools scan schemas\n")
		cliutil.Writef(fs.Output(), "  xsdtools scan -class conflicting-variant -format json schemas\n")
	}

	return fs, flags
}

// HandleScan executes the scan command
func HandleScan(ctx context.Context, args []string) error {
	fs, flags := SetupScanFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 && len(flags.Files) == 0 {
		fs.Usage()
		return fmt.Errorf("scan command requires at least one root directory or --file")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	switch resolver.Class(flags.Class) {
	case "", resolver.ClassDuplicate, resolver.ClassConflict, resolver.ClassCollision:
	default:
		return fmt.Errorf("invalid class '%s'. Valid classes: %s, %s, %s",
			flags.Class, resolver.ClassDuplicate, resolver.ClassConflict, resolver.ClassCollision)
	}
	var kinds []schema.Kind
	for _, k := range flags.Kinds {
		kind, ok := schema.ParseKind(k)
		if !ok {
			return fmt.Errorf("invalid kind '%s'. Valid kinds: %v", k, schema.Kinds)
		}
		kinds = append(kinds, kind)
	}

	survey, err := promoter.SurveyDeclarations(ctx, promoter.SurveyOptions{
		Roots:   fs.Args(),
		Files:   flags.Files,
		Kinds:   kinds,
		Workers: flags.Workers,
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	var groups []promoter.Group
	for _, g := range survey.Groups {
		if flags.Class == "" || g.Class == flags.Class {
			groups = append(groups, g)
		}
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		out := scanOutput{
			Files:        survey.Files,
			Declarations: survey.Declarations,
			Groups:       groups,
		}
		for _, f := range survey.Failures {
			out.Failures = append(out.Failures, failureOutput{Path: f.Path, Error: f.Err.Error()})
		}
		return OutputStructured(stdout, out, flags.Format)
	}

	st := termstyle.New(stdout)
	roots := fs.Args()
	for _, g := range groups {
		cliutil.Writef(stdout, "%s %s %s\n", st.Title(g.Name), st.Muted("["+g.Space+"]"), classLabel(st, g.Class))
		for _, o := range g.Occurrences {
			cliutil.Writef(stdout, "  %s:%d %s variant %d\n", pathutil.Display(roots, o.Path), o.Line, o.Kind, o.Variant)
		}
	}
	for _, f := range survey.Failures {
		cliutil.Writef(stderr, "%s\n", st.Error("failed: "+f.Err.Error()))
	}
	cliutil.Writef(stdout, "\nScanned %s (%s): %s, %s, %s\n",
		cliutil.Count(survey.Files, "file"),
		cliutil.Count(survey.Declarations, "declaration"),
		cliutil.Count(survey.Count(resolver.ClassDuplicate), "identical duplicate"),
		cliutil.Count(survey.Count(resolver.ClassConflict), "conflicting variant"),
		cliutil.Count(survey.Count(resolver.ClassCollision), "naming collision"))

	if len(survey.Failures) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

type scanOutput struct {
	Files        int              `json:"files" yaml:"files"`
	Declarations int              `json:"declarations" yaml:"declarations"`
	Groups       []promoter.Group `json:"groups,omitempty" yaml:"groups,omitempty"`
	Failures     []failureOutput  `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func classLabel(st *termstyle.Styler, class string) string {
	switch resolver.Class(class) {
	case resolver.ClassDuplicate:
		return st.Success(class)
	case resolver.ClassConflict:
		return st.Warning(class)
	case resolver.ClassCollision:
		return st.Error(class)
	default:
		return st.Muted(class)
	}
}
