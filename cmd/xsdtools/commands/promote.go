package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/mdraley/xsdtools"
	"github.com/mdraley/xsdtools/internal/cliutil"
	"github.com/mdraley/xsdtools/internal/config"
	"github.com/mdraley/xsdtools/internal/termstyle"
	"github.com/mdraley/xsdtools/promoter"
	"github.com/mdraley/xsdtools/schema"
)

// PromoteFlags contains flags for the promote command
type PromoteFlags struct {
	Config       string
	Roots        listFlag
	Files        listFlag
	Common       string
	Namespace    string
	Prefix       string
	OnlyTypes    listFlag
	SeedReport   string
	Kinds        listFlag
	AutoPick     bool
	TierRoots    listFlag
	Overrides    overrideFlag
	Strict       bool
	DryRun       bool
	BackupSuffix string
	NoBackup     bool
	Report       string
	ReportFormat string
	Workers      int
	Format       string
	Verbose      bool
	Quiet        bool
}

// SetupPromoteFlags creates and configures a FlagSet for the promote command.
// Returns the FlagSet and a PromoteFlags struct with bound flag variables.
func SetupPromoteFlags() (*flag.FlagSet, *PromoteFlags) {
	fs := flag.NewFlagSet("promote", flag.ContinueOnError)
	flags := &PromoteFlags{Overrides: overrideFlag{}}

	fs.StringVar(&flags.Config, "config", "", "config file (default: "+config.DefaultFile+" if present)")
	fs.Var(&flags.Roots, "root", "directory searched recursively for .xsd files (repeatable)")
	fs.Var(&flags.Files, "file", "additional .xsd file, such as generator output (repeatable)")
	fs.StringVar(&flags.Common, "common", "", "path of the common schema (created if missing)")
	fs.StringVar(&flags.Namespace, "namespace", "", "target namespace of the common schema")
	fs.StringVar(&flags.Prefix, "prefix", "", "prefix bound to the common namespace (default: "+promoter.DefaultPrefix+")")
	fs.Var(&flags.OnlyTypes, "only", "promote only these names, comma-separated (repeatable)")
	fs.StringVar(&flags.SeedReport, "seed-report", "", "class discovery report whose cross-package names seed --only")
	fs.Var(&flags.Kinds, "kinds", "declaration kinds eligible for promotion, comma-separated")
	fs.BoolVar(&flags.AutoPick, "auto-pick", false, "resolve conflicting variants by ranking instead of skipping them")
	fs.Var(&flags.TierRoots, "tier", "directory tier for --auto-pick, highest first (repeatable)")
	fs.Var(flags.Overrides, "override", "name=path-suffix of the copy to keep for a conflicting name (repeatable)")
	fs.BoolVar(&flags.Strict, "strict", false, "report unresolved references and exit non-zero when any remain")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "compute every change without writing schema files")
	fs.StringVar(&flags.BackupSuffix, "backup-suffix", schema.DefaultBackupSuffix, "suffix of one-time backups")
	fs.BoolVar(&flags.NoBackup, "no-backup", false, "do not back up schema files before rewriting them")
	fs.StringVar(&flags.Report, "report", "", "conflict report path (default: next to the common schema)")
	fs.StringVar(&flags.ReportFormat, "report-format", "", "conflict report format: csv, json, yaml (default: csv)")
	fs.IntVar(&flags.Workers, "workers", 0, "documents loaded concurrently (default: 4)")
	fs.StringVar(&flags.Format, "format", FormatText, "summary format: text, json, or yaml")
	fs.BoolVar(&flags.Verbose, "v", false, "verbose: log every step")
	fs.BoolVar(&flags.Verbose, "verbose", false, "verbose: log every step")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no log output and no text summary")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no log output and no text summary")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: xsdtools promote [flags] [root...]\n\n")
		cliutil.Writef(fs.Output(), "Move declarations duplicated across schema files into one common schema\n")
		cliutil.Writef(fs.Output(), "and rewrite every consumer to import and reference it.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nConfiguration:\n")
		cliutil.Writef(fs.Output(), "  Flags override %s* environment variables (a .env file is loaded first),\n", config.EnvPrefix)
		cliutil.Writef(fs.Output(), "  which override the config file.\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  xsdtools promote --common schemas/Common.xsd --namespace urn:acme:common schemas\n")
		cliutil.Writef(fs.Output(), "  xsdtools promote --dry-run --auto-pick --tier schemas/core schemas\n")
		cliutil.Writef(fs.Output(), "  xsdtools promote --config xsdtools.yaml --strict\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Run completed\n")
		cliutil.Writef(fs.Output(), "  1    Invalid configuration, failed files, or unresolved references with --strict\n")
	}

	return fs, flags
}

// HandlePromote executes the promote command
func HandlePromote(ctx context.Context, args []string) error {
	fs, flags := SetupPromoteFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	fileCfg, err := config.Load(flags.Config)
	if err != nil {
		return err
	}
	pc := fileCfg.Promoter()
	applyPromoteFlags(fs, flags, &pc)
	pc.Logger = schema.NewSlogAdapter(newLogger(stderr, flags.Verbose, flags.Quiet))

	startTime := time.Now()
	result, err := promoter.New(pc).Run(ctx)
	if err != nil {
		return fmt.Errorf("promoting: %w", err)
	}
	totalTime := time.Since(startTime)

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(stdout, newPromoteOutput(result), flags.Format); err != nil {
			return err
		}
	} else if !flags.Quiet {
		printPromoteText(termstyle.New(stdout), pc, result, totalTime)
	}

	switch {
	case len(result.Failures) > 0:
		return &ExitError{Code: 1}
	case pc.Strict && result.HasUnresolved():
		return &ExitError{Code: 1}
	}
	return nil
}

// applyPromoteFlags copies the flags that were given on top of pc.
func applyPromoteFlags(fs *flag.FlagSet, flags *PromoteFlags, pc *promoter.Config) {
	roots := append([]string(nil), flags.Roots...)
	roots = append(roots, fs.Args()...)
	if len(roots) > 0 {
		pc.Roots = roots
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			pc.Files = flags.Files
		case "common":
			pc.CommonSchema = flags.Common
		case "namespace":
			pc.Namespace = flags.Namespace
		case "prefix":
			pc.Prefix = flags.Prefix
		case "only":
			pc.OnlyTypes = flags.OnlyTypes
		case "seed-report":
			pc.SeedReport = flags.SeedReport
		case "kinds":
			pc.Kinds = nil
			for _, k := range flags.Kinds {
				pc.Kinds = append(pc.Kinds, schema.Kind(k))
			}
		case "auto-pick":
			pc.AutoPick = flags.AutoPick
		case "tier":
			pc.TierRoots = flags.TierRoots
		case "override":
			if pc.Overrides == nil {
				pc.Overrides = make(map[string]string)
			}
			for name, path := range flags.Overrides {
				pc.Overrides[name] = path
			}
		case "strict":
			pc.Strict = flags.Strict
		case "dry-run":
			pc.DryRun = flags.DryRun
		case "backup-suffix":
			pc.BackupSuffix = flags.BackupSuffix
		case "report":
			pc.ReportPath = flags.Report
		case "report-format":
			pc.ReportFormat = flags.ReportFormat
		case "workers":
			pc.Workers = flags.Workers
		}
	})
	if flags.NoBackup {
		pc.BackupSuffix = ""
	}
}

type promoteOutput struct {
	RunID      string                    `json:"run_id" yaml:"run_id"`
	DryRun     bool                      `json:"dry_run" yaml:"dry_run"`
	Summary    promoter.Summary          `json:"summary" yaml:"summary"`
	Promotions []promotionOutput         `json:"promotions,omitempty" yaml:"promotions,omitempty"`
	Demotions  []promoter.Demotion       `json:"demotions,omitempty" yaml:"demotions,omitempty"`
	Records    []promoter.ConflictRecord `json:"records,omitempty" yaml:"records,omitempty"`
	Unresolved []promoter.Unresolved     `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Failures   []failureOutput           `json:"failures,omitempty" yaml:"failures,omitempty"`
	Written    []string                  `json:"written,omitempty" yaml:"written,omitempty"`
	Backups    []string                  `json:"backups,omitempty" yaml:"backups,omitempty"`
	Report     string                    `json:"report,omitempty" yaml:"report,omitempty"`
}

type promotionOutput struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	Source     string `json:"source" yaml:"source"`
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`
	Resolution string `json:"resolution" yaml:"resolution"`
	Added      bool   `json:"added" yaml:"added"`
}

type failureOutput struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

func newPromoteOutput(r *promoter.Result) promoteOutput {
	out := promoteOutput{
		RunID:      r.RunID,
		DryRun:     r.DryRun,
		Summary:    r.Summary,
		Demotions:  r.Demotions,
		Records:    r.Records,
		Unresolved: r.Unresolved,
		Written:    r.Written,
		Backups:    r.Backups,
		Report:     r.ReportPath,
	}
	for _, p := range r.Promotions {
		out.Promotions = append(out.Promotions, promotionOutput{
			Name:       p.Name,
			Kind:       string(p.Kind),
			Source:     p.Source,
			Line:       p.Line,
			Resolution: string(p.Resolution),
			Added:      p.Added,
		})
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, failureOutput{Path: f.Path, Error: f.Err.Error()})
	}
	return out
}

func printPromoteText(st *termstyle.Styler, pc promoter.Config, r *promoter.Result, elapsed time.Duration) {
	cliutil.Writef(stdout, "%s\n", st.Title("XSD Common-Type Promotion"))
	cliutil.Writef(stdout, "=========================\n\n")
	cliutil.Writef(stdout, "xsdtools version: %s\n", xsdtools.Version())
	cliutil.Writef(stdout, "Run ID: %s\n", r.RunID)
	cliutil.Writef(stdout, "Common schema: %s (%s)\n", pc.CommonSchema, pc.Namespace)
	if r.DryRun {
		cliutil.Writef(stdout, "%s\n", st.Warning("Dry run: no schema files were written"))
	}
	cliutil.Writef(stdout, "Total Time: %v\n\n", elapsed)

	if len(r.Promotions) > 0 {
		cliutil.Writef(stdout, "Promoted (%d):\n", len(r.Promotions))
		for _, p := range r.Promotions {
			note := string(p.Resolution)
			if !p.Added {
				note += ", already in common"
			}
			cliutil.Writef(stdout, "  %s %s from %s:%d %s\n", p.Kind, p.Name, p.Source, p.Line, st.Muted("("+note+")"))
		}
		cliutil.Writef(stdout, "\n")
	}
	if len(r.Records) > 0 {
		cliutil.Writef(stdout, "Report rows (%d):\n", len(r.Records))
		for _, rec := range r.Records {
			cliutil.Writef(stdout, "  %s %s %s (%s)\n",
				st.Warning(fmt.Sprintf("%-20s", rec.Resolution)), rec.Kind, rec.Name, cliutil.Count(rec.Variants, "variant"))
		}
		cliutil.Writef(stdout, "\n")
	}
	if len(r.Unresolved) > 0 {
		cliutil.Writef(stdout, "Unresolved references (%d):\n", len(r.Unresolved))
		for _, u := range r.Unresolved {
			cliutil.Writef(stdout, "  %s:%d: %s=%q\n", u.Path, u.Line, u.Attr, u.Value)
		}
		cliutil.Writef(stdout, "\n")
	}
	if len(r.Failures) > 0 {
		cliutil.Writef(stdout, "Failed files (%d):\n", len(r.Failures))
		for _, f := range r.Failures {
			cliutil.Writef(stdout, "  %s\n", st.Error(f.Err.Error()))
		}
		cliutil.Writef(stdout, "\n")
	}
	if r.ReportPath != "" {
		cliutil.Writef(stdout, "Report: %s\n", r.ReportPath)
	}

	summary := r.Summary.String()
	switch {
	case len(r.Failures) > 0:
		cliutil.Writef(stdout, "%s\n", st.Error("✗ "+summary))
	case len(r.Records) > 0 || len(r.Unresolved) > 0:
		cliutil.Writef(stdout, "%s\n", st.Warning("! "+summary))
	default:
		cliutil.Writef(stdout, "%s\n", st.Success("✓ "+summary))
	}
}
