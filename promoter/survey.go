package promoter

import (
	"context"
	"errors"
	"fmt"

	"github.com/mdraley/xsdtools/resolver"
	"github.com/mdraley/xsdtools/scanner"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// SurveyOptions selects the documents Survey reads.
type SurveyOptions struct {
	Roots []string
	Files []string
	// Kinds limits the reported groups. Empty means every kind.
	Kinds   []schema.Kind
	Workers int
}

// Occurrence locates one declaration of a surveyed name.
type Occurrence struct {
	Path      string `json:"path" yaml:"path"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Kind      string `json:"kind" yaml:"kind"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Variant   int    `json:"variant" yaml:"variant"`
}

// Group is a name declared more than once across the surveyed documents.
type Group struct {
	Name        string       `json:"name" yaml:"name"`
	Space       string       `json:"space" yaml:"space"`
	Class       string       `json:"class" yaml:"class"`
	Variants    int          `json:"variants" yaml:"variants"`
	Occurrences []Occurrence `json:"occurrences" yaml:"occurrences"`
}

// Survey is a read-only inventory of the duplicated declarations under a
// set of roots.
type Survey struct {
	Files        int       `json:"files" yaml:"files"`
	Declarations int       `json:"declarations" yaml:"declarations"`
	Groups       []Group   `json:"groups" yaml:"groups"`
	Failures     []Failure `json:"-" yaml:"-"`
}

// Count returns the number of groups of class c.
func (s *Survey) Count(c resolver.Class) int {
	n := 0
	for _, g := range s.Groups {
		if g.Class == string(c) {
			n++
		}
	}
	return n
}

// SurveyDeclarations scans the documents under opts.Roots and opts.Files and
// classifies every duplicated name. Nothing is written. Per-file failures
// are collected in Survey.Failures.
func SurveyDeclarations(ctx context.Context, opts SurveyOptions) (*Survey, error) {
	if len(opts.Roots) == 0 && len(opts.Files) == 0 {
		return nil, &xsderrors.ConfigError{Option: "roots", Message: "at least one root directory or file is required"}
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = schema.Kinds
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	out := &Survey{}
	paths, errs := Discover(opts.Roots, opts.Files, nil)
	for _, err := range errs {
		var ioErr *xsderrors.IOError
		path := ""
		if errors.As(err, &ioErr) {
			path = ioErr.Path
		}
		out.Failures = append(out.Failures, Failure{Path: path, Err: err})
	}

	docs, err := loadAll(ctx, schema.NewStore(), paths, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("promoter: survey: %w", err)
	}
	idx := scanner.NewIndex()
	for _, l := range docs {
		if l.err != nil {
			out.Failures = append(out.Failures, Failure{Path: l.path, Err: l.err})
			continue
		}
		res := scanner.Scan(l.doc, scanner.Options{})
		idx.Add(res)
		out.Files++
		out.Declarations += len(res.Declarations)
	}

	plan := resolver.Resolve(idx, resolver.Config{Kinds: kinds})
	for _, c := range plan.Candidates {
		g := Group{
			Name:     c.Name(),
			Space:    string(c.Key.Space),
			Class:    string(c.Class),
			Variants: len(c.Variants),
		}
		for i, v := range c.Variants {
			for _, d := range v {
				g.Occurrences = append(g.Occurrences, Occurrence{
					Path:      d.Path(),
					Line:      d.Line,
					Kind:      string(d.Kind),
					Namespace: d.Namespace,
					Variant:   i + 1,
				})
			}
		}
		out.Groups = append(out.Groups, g)
	}
	return out, nil
}
