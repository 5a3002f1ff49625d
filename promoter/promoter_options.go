package promoter

import (
	"context"
	"fmt"
	"maps"

	"github.com/mdraley/xsdtools/schema"
)

// Option is a function that configures a promotion run
type Option func(*promoteConfig) error

// promoteConfig holds configuration for a promotion run
type promoteConfig struct {
	roots        []string
	files        []string
	commonSchema string
	namespace    string

	// Configuration options (nil means use default from DefaultConfig)
	prefix       *string
	onlyTypes    []string
	seedReport   *string
	kinds        []schema.Kind
	autoPick     *bool
	tierRoots    []string
	overrides    map[string]string
	strict       *bool
	dryRun       *bool
	backupSuffix *string
	reportPath   *string
	reportFormat *string
	skipReport   *bool
	workers      *int
	logger       schema.Logger
}

// PromoteWithOptions runs the promotion pipeline configured by functional
// options.
//
// Example:
//
//	result, err := promoter.PromoteWithOptions(ctx,
//	    promoter.WithRoots("schemas/"),
//	    promoter.WithCommonSchema("schemas/common/Common.xsd"),
//	    promoter.WithNamespace("urn:example:common"),
//	    promoter.WithAutoPick(true),
//	    promoter.WithTierRoots("Service", "Root"),
//	)
func PromoteWithOptions(ctx context.Context, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("promoter: invalid options: %w", err)
	}

	defaults := DefaultConfig()
	p := New(Config{
		Roots:        cfg.roots,
		Files:        cfg.files,
		CommonSchema: cfg.commonSchema,
		Namespace:    cfg.namespace,
		Prefix:       valueOrDefault(cfg.prefix, defaults.Prefix),
		OnlyTypes:    cfg.onlyTypes,
		SeedReport:   valueOrDefault(cfg.seedReport, defaults.SeedReport),
		Kinds:        cfg.kinds,
		AutoPick:     valueOrDefault(cfg.autoPick, defaults.AutoPick),
		TierRoots:    cfg.tierRoots,
		Overrides:    cfg.overrides,
		Strict:       valueOrDefault(cfg.strict, defaults.Strict),
		DryRun:       valueOrDefault(cfg.dryRun, defaults.DryRun),
		BackupSuffix: valueOrDefault(cfg.backupSuffix, defaults.BackupSuffix),
		ReportPath:   valueOrDefault(cfg.reportPath, defaults.ReportPath),
		ReportFormat: valueOrDefault(cfg.reportFormat, defaults.ReportFormat),
		SkipReport:   valueOrDefault(cfg.skipReport, defaults.SkipReport),
		Workers:      valueOrDefault(cfg.workers, defaults.Workers),
		Logger:       cfg.logger,
	})
	return p.Run(ctx)
}

func applyOptions(opts ...Option) (*promoteConfig, error) {
	cfg := &promoteConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if len(cfg.roots) == 0 && len(cfg.files) == 0 {
		return nil, fmt.Errorf("promoter: at least one root or file is required")
	}
	if cfg.commonSchema == "" {
		return nil, fmt.Errorf("promoter: common schema path is required")
	}
	return cfg, nil
}

func valueOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr == nil {
		return defaultVal
	}
	return *ptr
}

// WithRoots adds directories to search for schema files
func WithRoots(roots ...string) Option {
	return func(cfg *promoteConfig) error {
		for _, r := range roots {
			if r == "" {
				return fmt.Errorf("root path cannot be empty")
			}
		}
		cfg.roots = append(cfg.roots, roots...)
		return nil
	}
}

// WithFiles adds individual schema files to the input set
func WithFiles(files ...string) Option {
	return func(cfg *promoteConfig) error {
		cfg.files = append(cfg.files, files...)
		return nil
	}
}

// WithCommonSchema sets the path of the common schema
func WithCommonSchema(path string) Option {
	return func(cfg *promoteConfig) error {
		cfg.commonSchema = path
		return nil
	}
}

// WithNamespace sets the target namespace of the common schema
func WithNamespace(ns string) Option {
	return func(cfg *promoteConfig) error {
		cfg.namespace = ns
		return nil
	}
}

// WithPrefix sets the prefix bound to the common namespace (default: "c")
func WithPrefix(prefix string) Option {
	return func(cfg *promoteConfig) error {
		cfg.prefix = &prefix
		return nil
	}
}

// WithOnlyTypes restricts promotion to the given names
func WithOnlyTypes(names ...string) Option {
	return func(cfg *promoteConfig) error {
		cfg.onlyTypes = append(cfg.onlyTypes, names...)
		return nil
	}
}

// WithSeedReport adds the cross-package class names of a discovery report
// to the promotion allow-list
func WithSeedReport(path string) Option {
	return func(cfg *promoteConfig) error {
		cfg.seedReport = &path
		return nil
	}
}

// WithKinds sets the declaration kinds eligible for promotion
func WithKinds(kinds ...schema.Kind) Option {
	return func(cfg *promoteConfig) error {
		for _, k := range kinds {
			if _, ok := schema.ParseKind(string(k)); !ok {
				return fmt.Errorf("invalid kind '%s'", k)
			}
		}
		cfg.kinds = append(cfg.kinds, kinds...)
		return nil
	}
}

// WithAutoPick enables resolving conflicting variants by ranking
func WithAutoPick(enabled bool) Option {
	return func(cfg *promoteConfig) error {
		cfg.autoPick = &enabled
		return nil
	}
}

// WithTierRoots sets the directory tiers used to rank conflicting variants
func WithTierRoots(roots ...string) Option {
	return func(cfg *promoteConfig) error {
		cfg.tierRoots = append(cfg.tierRoots, roots...)
		return nil
	}
}

// WithOverride keeps the copy of name found at a path ending in pathSuffix
func WithOverride(name, pathSuffix string) Option {
	return func(cfg *promoteConfig) error {
		if name == "" || pathSuffix == "" {
			return fmt.Errorf("override needs a name and a path")
		}
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]string)
		}
		cfg.overrides[name] = pathSuffix
		return nil
	}
}

// WithOverrides merges a name to path-suffix map into the overrides
func WithOverrides(overrides map[string]string) Option {
	return func(cfg *promoteConfig) error {
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]string, len(overrides))
		}
		maps.Copy(cfg.overrides, overrides)
		return nil
	}
}

// WithStrict lists unresolved references in the result and the report
func WithStrict(enabled bool) Option {
	return func(cfg *promoteConfig) error {
		cfg.strict = &enabled
		return nil
	}
}

// WithDryRun computes every change without writing schema files
func WithDryRun(enabled bool) Option {
	return func(cfg *promoteConfig) error {
		cfg.dryRun = &enabled
		return nil
	}
}

// WithBackupSuffix sets the suffix of one-time backups; empty disables them
func WithBackupSuffix(suffix string) Option {
	return func(cfg *promoteConfig) error {
		cfg.backupSuffix = &suffix
		return nil
	}
}

// WithReport sets the report path and format
func WithReport(path, format string) Option {
	return func(cfg *promoteConfig) error {
		if format != "" && !IsValidReportFormat(format) {
			return fmt.Errorf("invalid report format '%s'. Valid formats: %v", format, ValidReportFormats())
		}
		if path != "" {
			cfg.reportPath = &path
		}
		if format != "" {
			cfg.reportFormat = &format
		}
		return nil
	}
}

// WithSkipReport leaves the conflict report unwritten
func WithSkipReport(enabled bool) Option {
	return func(cfg *promoteConfig) error {
		cfg.skipReport = &enabled
		return nil
	}
}

// WithWorkers bounds concurrent document loading
func WithWorkers(n int) Option {
	return func(cfg *promoteConfig) error {
		if n < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", n)
		}
		cfg.workers = &n
		return nil
	}
}

// WithLogger sets the logger for progress output
func WithLogger(l schema.Logger) Option {
	return func(cfg *promoteConfig) error {
		cfg.logger = l
		return nil
	}
}
