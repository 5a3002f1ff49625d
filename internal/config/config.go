// Package config loads xsdtools settings from a YAML file and XSDTOOLS_*
// environment variables.
//
// Sources are layered: defaults, then the file, then the environment. Command
// line flags are applied last by the caller, so they always win.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"

	"github.com/mdraley/xsdtools/promoter"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// DefaultFile is read when no config file is named and it exists in the
// working directory.
const DefaultFile = "xsdtools.yaml"

// EnvFile is the dotenv file loaded before environment lookup.
const EnvFile = ".env"

// EnvPrefix prefixes every environment variable the package reads.
const EnvPrefix = "XSDTOOLS_"

// Config is the file and environment view of promoter.Config.
type Config struct {
	Roots        []string          `yaml:"roots"`
	Files        []string          `yaml:"files"`
	Common       string            `yaml:"common"`
	Namespace    string            `yaml:"namespace"`
	Prefix       string            `yaml:"prefix"`
	OnlyTypes    []string          `yaml:"only_types"`
	SeedReport   string            `yaml:"seed_report"`
	Kinds        []string          `yaml:"kinds"`
	AutoPick     bool              `yaml:"auto_pick"`
	TierRoots    []string          `yaml:"tier_roots"`
	Overrides    map[string]string `yaml:"overrides"`
	Strict       bool              `yaml:"strict"`
	BackupSuffix *string           `yaml:"backup_suffix"`
	Report       string            `yaml:"report"`
	ReportFormat string            `yaml:"report_format"`
	Workers      int               `yaml:"workers"`
}

// Load reads the config file at path and applies the environment on top.
// An empty path reads DefaultFile when it exists; a named file must exist.
// A .env file in the working directory is loaded first without replacing
// variables that are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &xsderrors.ConfigError{Option: "env file", Value: EnvFile, Cause: err}
	}

	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &xsderrors.ConfigError{Option: "config", Value: path, Message: "invalid YAML", Cause: err}
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, &xsderrors.IOError{Path: path, Op: "read config", Cause: err}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields with XSDTOOLS_* variables. List values are
// comma separated; XSDTOOLS_OVERRIDES holds name=path pairs.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = splitList(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &xsderrors.ConfigError{Option: EnvPrefix + key, Value: v, Message: "not a boolean", Cause: err}
		}
		*dst = b
		return nil
	}

	list("ROOTS", &c.Roots)
	list("FILES", &c.Files)
	str("COMMON", &c.Common)
	str("NAMESPACE", &c.Namespace)
	str("PREFIX", &c.Prefix)
	list("ONLY_TYPES", &c.OnlyTypes)
	str("SEED_REPORT", &c.SeedReport)
	list("KINDS", &c.Kinds)
	list("TIER_ROOTS", &c.TierRoots)
	str("REPORT", &c.Report)
	str("REPORT_FORMAT", &c.ReportFormat)
	if err := boolean("AUTO_PICK", &c.AutoPick); err != nil {
		return err
	}
	if err := boolean("STRICT", &c.Strict); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "BACKUP_SUFFIX"); ok {
		c.BackupSuffix = &v
	}
	if v, ok := lookup(EnvPrefix + "WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return &xsderrors.ConfigError{Option: EnvPrefix + "WORKERS", Value: v, Message: "must be a positive integer"}
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "OVERRIDES"); ok && v != "" {
		overrides, err := parseOverrides(v)
		if err != nil {
			return err
		}
		c.Overrides = overrides
	}
	return nil
}

// Promoter converts c into a promoter configuration on top of the promoter
// defaults.
func (c *Config) Promoter() promoter.Config {
	out := promoter.DefaultConfig()
	out.Roots = c.Roots
	out.Files = c.Files
	out.CommonSchema = c.Common
	out.Namespace = c.Namespace
	if c.Prefix != "" {
		out.Prefix = c.Prefix
	}
	out.OnlyTypes = c.OnlyTypes
	out.SeedReport = c.SeedReport
	for _, k := range c.Kinds {
		out.Kinds = append(out.Kinds, schema.Kind(k))
	}
	out.AutoPick = c.AutoPick
	out.TierRoots = c.TierRoots
	out.Overrides = c.Overrides
	out.Strict = c.Strict
	if c.BackupSuffix != nil {
		out.BackupSuffix = *c.BackupSuffix
	}
	out.ReportPath = c.Report
	if c.ReportFormat != "" {
		out.ReportFormat = c.ReportFormat
	}
	if c.Workers > 0 {
		out.Workers = c.Workers
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseOverrides parses "name=path,name=path".
func parseOverrides(v string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range splitList(v) {
		name, path, ok := strings.Cut(pair, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, &xsderrors.ConfigError{Option: EnvPrefix + "OVERRIDES", Value: pair, Message: "expected name=path"}
		}
		out[name] = path
	}
	return out, nil
}
