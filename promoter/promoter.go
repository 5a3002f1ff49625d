package promoter

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/mdraley/xsdtools/resolver"
	"github.com/mdraley/xsdtools/scanner"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// DefaultPrefix is the prefix bound to the common namespace.
const DefaultPrefix = "c"

// DefaultWorkers is the number of documents loaded concurrently.
const DefaultWorkers = 4

// Config configures a promotion run.
type Config struct {
	// Roots are directories searched recursively for .xsd files.
	Roots []string
	// Files are additional schema files, such as generator output.
	Files []string
	// CommonSchema is the path of the common schema. It is created when
	// missing.
	CommonSchema string
	// Namespace is the target namespace of the common schema.
	Namespace string
	// Prefix is bound to Namespace in every rewritten document.
	Prefix string

	// OnlyTypes restricts promotion to these names. Names listed here are
	// promoted even when they occur only once.
	OnlyTypes []string
	// SeedReport is a class discovery report whose cross-package class
	// names are added to OnlyTypes.
	SeedReport string
	// Kinds are the declaration kinds eligible for promotion. Empty means
	// resolver.DefaultKinds.
	Kinds []schema.Kind
	// AutoPick resolves conflicting variants by ranking.
	AutoPick bool
	// TierRoots orders documents for AutoPick, highest tier first.
	TierRoots []string
	// Overrides picks the copy to keep for a name by path suffix.
	Overrides map[string]string
	// Strict lists unresolved references in the result and the report.
	Strict bool

	// DryRun computes every change without writing schema files.
	DryRun bool
	// BackupSuffix names one-time backups. Empty disables them.
	BackupSuffix string
	// ReportPath is where the conflict report goes. Empty means
	// DefaultReportPath of the common schema.
	ReportPath string
	// ReportFormat is csv, json or yaml.
	ReportFormat string
	// SkipReport leaves the report unwritten. Result.Records is still set.
	SkipReport bool
	// Workers bounds concurrent document loading.
	Workers int

	// Logger receives progress output.
	Logger schema.Logger
}

// DefaultConfig returns a Config with the default prefix, backup suffix,
// report format and worker count.
func DefaultConfig() Config {
	return Config{
		Prefix:       DefaultPrefix,
		BackupSuffix: schema.DefaultBackupSuffix,
		ReportFormat: FormatCSV,
		Workers:      DefaultWorkers,
		Logger:       schema.NopLogger{},
	}
}

// Promoter runs the promotion pipeline.
//
// Only one Promoter may target a given common schema file at a time; the
// common schema is written once at the end of Run and the last writer wins.
type Promoter struct {
	config Config
	log    schema.Logger
}

// New creates a Promoter.
func New(config Config) *Promoter {
	log := config.Logger
	if log == nil {
		log = schema.NopLogger{}
	}
	return &Promoter{config: config, log: log}
}

// Promotion is a declaration placed in (or confirmed in) the common schema.
type Promotion struct {
	Name       string
	Kind       schema.Kind
	Source     string
	Line       int
	Resolution resolver.Resolution
	// Added is false when the common schema already held the declaration.
	Added bool
}

// Demotion is a local declaration removed in favor of the common copy.
type Demotion struct {
	Path string      `json:"path" yaml:"path"`
	Kind schema.Kind `json:"kind" yaml:"kind"`
	Name string      `json:"name" yaml:"name"`
	Line int         `json:"line,omitempty" yaml:"line,omitempty"`
}

// Unresolved is a reference that resolves to no declaration after the run.
type Unresolved struct {
	Path  string `json:"path" yaml:"path"`
	Line  int    `json:"line,omitempty" yaml:"line,omitempty"`
	Attr  string `json:"attr" yaml:"attr"`
	Value string `json:"value" yaml:"value"`
}

// Failure is a document that could not be processed.
type Failure struct {
	Path string
	Err  error
}

// Summary counts what a run did.
type Summary struct {
	FilesScanned int `json:"files_scanned" yaml:"files_scanned"`
	FilesFailed  int `json:"files_failed" yaml:"files_failed"`
	Declarations int `json:"declarations" yaml:"declarations"`
	Candidates   int `json:"candidates" yaml:"candidates"`
	Promoted     int `json:"promoted" yaml:"promoted"`
	Demoted      int `json:"demoted" yaml:"demoted"`
	Conflicts    int `json:"conflicts" yaml:"conflicts"`
	Collisions   int `json:"collisions" yaml:"collisions"`
	Blocked      int `json:"blocked" yaml:"blocked"`
	Unresolved   int `json:"unresolved" yaml:"unresolved"`
	FilesWritten int `json:"files_written" yaml:"files_written"`
	Backups      int `json:"backups" yaml:"backups"`
}

// String returns the summary on one line.
func (s Summary) String() string {
	return fmt.Sprintf(
		"%d file(s) scanned, %d failed, %d promoted, %d demoted, %d conflict(s), %d collision(s), %d blocked, %d unresolved, %d file(s) written",
		s.FilesScanned, s.FilesFailed, s.Promoted, s.Demoted, s.Conflicts, s.Collisions, s.Blocked, s.Unresolved, s.FilesWritten)
}

// Result is the outcome of Run.
type Result struct {
	RunID  string
	DryRun bool
	// Plan is the resolver output the run acted on.
	Plan       *resolver.Plan
	Promotions []Promotion
	Demotions  []Demotion
	Records    []ConflictRecord
	// Unresolved is filled only in strict mode.
	Unresolved []Unresolved
	Failures   []Failure
	// Written lists the files that were (or in a dry run would be)
	// rewritten, consumers first and the common schema last.
	Written    []string
	Backups    []string
	ReportPath string
	Warnings   Warnings
	Summary    Summary
}

// HasUnresolved reports whether strict mode found unresolved references.
func (r *Result) HasUnresolved() bool {
	return len(r.Unresolved) > 0
}

// run carries the state of one Run call.
type run struct {
	cfg    Config
	log    schema.Logger
	store  *schema.Store
	common *schema.Document
	docs   []*schema.Document
	index  *scanner.Index
	writer *commonWriter
	res    *Result
	report *Report

	demotedOwners map[*scanner.Declaration]bool
	touched       map[*schema.Document]bool
}

// Run executes the pipeline: discover, load, scan, resolve, promote,
// demote, rewrite references, save and report. Per-file failures are
// collected in the result. An error is returned only for invalid
// configuration, an unusable common schema, or cancellation.
func (p *Promoter) Run(ctx context.Context) (*Result, error) {
	cfg, err := p.normalized()
	if err != nil {
		return nil, err
	}
	r := &run{
		cfg: cfg,
		log: p.log,
		store: &schema.Store{
			BackupSuffix: cfg.BackupSuffix,
			DryRun:       cfg.DryRun,
			Logger:       p.log,
		},
		report:        newReport(cfg.DryRun),
		demotedOwners: make(map[*scanner.Declaration]bool),
		touched:       make(map[*schema.Document]bool),
	}
	r.res = &Result{RunID: r.report.RunID, DryRun: cfg.DryRun}

	include := slices.Clone(cfg.OnlyTypes)
	if cfg.SeedReport != "" {
		seeds, err := LoadSeedNames(cfg.SeedReport)
		if err != nil {
			return nil, fmt.Errorf("promoter: %w", err)
		}
		r.log.Info("seed names loaded", "path", cfg.SeedReport, "count", len(seeds))
		include = append(include, seeds...)
	}

	r.common, err = r.store.LoadOrCreate(cfg.CommonSchema, cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("promoter: common schema: %w", err)
	}
	r.writer = newCommonWriter(r.common, cfg.Namespace, cfg.Prefix)

	if err := r.load(ctx); err != nil {
		return nil, err
	}
	r.scan()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan := resolver.Resolve(r.index, resolver.Config{
		Include:   include,
		Kinds:     cfg.Kinds,
		AutoPick:  cfg.AutoPick,
		TierRoots: cfg.TierRoots,
		Overrides: cfg.Overrides,
	})
	r.res.Plan = plan
	r.recordPlan(plan)

	if n := r.writer.stripSelfReferences(); n > 0 {
		r.warn(NewSelfReferenceRemovedWarning(r.common.Path, n))
	}
	promoted := r.promote(plan)
	r.demote(promoted)
	r.rewrite()
	r.ensureImports()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.checkReferences()
	r.save()
	r.finish()
	return r.res, nil
}

// normalized validates the configuration and fills defaults.
func (p *Promoter) normalized() (Config, error) {
	cfg := p.config
	defaults := DefaultConfig()
	if cfg.Prefix == "" {
		cfg.Prefix = defaults.Prefix
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = defaults.ReportFormat
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	switch {
	case cfg.CommonSchema == "":
		return cfg, &xsderrors.ConfigError{Option: "common schema", Message: "path is required"}
	case cfg.Namespace == "":
		return cfg, &xsderrors.ConfigError{Option: "namespace", Message: "target namespace of the common schema is required"}
	case cfg.Namespace == schema.XSDNamespace || cfg.Namespace == schema.XMLNamespace:
		return cfg, &xsderrors.ConfigError{Option: "namespace", Value: cfg.Namespace, Message: "reserved namespace"}
	case !isNCName(cfg.Prefix) || strings.HasPrefix(strings.ToLower(cfg.Prefix), "xml"):
		return cfg, &xsderrors.ConfigError{Option: "prefix", Value: cfg.Prefix, Message: "must be an XML name without a colon"}
	case !IsValidReportFormat(cfg.ReportFormat):
		return cfg, &xsderrors.ConfigError{Option: "report format", Value: cfg.ReportFormat,
			Message: fmt.Sprintf("expected one of %v", ValidReportFormats())}
	case len(cfg.Roots) == 0 && len(cfg.Files) == 0:
		return cfg, &xsderrors.ConfigError{Option: "roots", Message: "at least one root directory or file is required"}
	}
	for _, k := range cfg.Kinds {
		if _, ok := schema.ParseKind(string(k)); !ok {
			return cfg, &xsderrors.ConfigError{Option: "kinds", Value: string(k), Message: "unknown declaration kind"}
		}
	}
	return cfg, nil
}

func isNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || unicode.IsLetter(c):
		case i > 0 && (c == '-' || c == '.' || unicode.IsDigit(c)):
		default:
			return false
		}
	}
	return true
}
