package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mdraley/xsdtools/internal/cliutil"
	"github.com/mdraley/xsdtools/internal/pathutil"
	"github.com/mdraley/xsdtools/promoter"
	"github.com/mdraley/xsdtools/resolver"
)

type scanInput struct {
	Dirs   []string `json:"dirs"             jsonschema:"Directories searched recursively for .xsd files"`
	Files  []string `json:"files,omitempty"  jsonschema:"Additional individual .xsd files"`
	Kinds  []string `json:"kinds,omitempty"  jsonschema:"Declaration kinds to report: complexType, simpleType, element, group, attributeGroup, attribute. Default all."`
	Class  string   `json:"class,omitempty"  jsonschema:"Only groups of this class: duplicate-identical or conflicting-variant or naming-collision"`
	Offset int      `json:"offset,omitempty" jsonschema:"Skip the first N groups"`
	Limit  int      `json:"limit,omitempty"  jsonschema:"Maximum groups to return (default 100)"`
}

type scanOccurrence struct {
	Path      string `json:"path"`
	Line      int    `json:"line,omitempty"`
	Kind      string `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	Variant   int    `json:"variant"`
}

type scanGroup struct {
	Name        string           `json:"name"`
	Space       string           `json:"space"`
	Class       string           `json:"class"`
	Variants    int              `json:"variants"`
	Occurrences []scanOccurrence `json:"occurrences"`
}

type scanOutput struct {
	Files        int           `json:"files"`
	Declarations int           `json:"declarations"`
	Failures     []fileFailure `json:"failures,omitempty"`
	Duplicates   int           `json:"duplicates"`
	Conflicts    int           `json:"conflicts"`
	Collisions   int           `json:"collisions"`
	Matched      int           `json:"matched"`
	Returned     int           `json:"returned"`
	Groups       []scanGroup   `json:"groups,omitempty"`
	Summary      string        `json:"summary"`
}

var validClasses = map[string]bool{
	string(resolver.ClassDuplicate): true,
	string(resolver.ClassConflict):  true,
	string(resolver.ClassCollision): true,
}

func handleScanDeclarations(ctx context.Context, _ *mcp.CallToolRequest, input scanInput) (*mcp.CallToolResult, scanOutput, error) {
	if len(input.Dirs) == 0 && len(input.Files) == 0 {
		return errResult(fmt.Errorf("at least one dir or file is required")), scanOutput{}, nil
	}
	if input.Class != "" && !validClasses[input.Class] {
		return errResult(fmt.Errorf("invalid class %q; valid values: %s, %s, %s", input.Class,
			resolver.ClassDuplicate, resolver.ClassConflict, resolver.ClassCollision)), scanOutput{}, nil
	}
	kinds, err := parseKinds(input.Kinds)
	if err != nil {
		return errResult(err), scanOutput{}, nil
	}

	survey, err := promoter.SurveyDeclarations(ctx, promoter.SurveyOptions{
		Roots:   input.Dirs,
		Files:   input.Files,
		Kinds:   kinds,
		Workers: cfg.Workers,
	})
	if err != nil {
		return errResult(err), scanOutput{}, nil
	}

	output := scanOutput{
		Files:        survey.Files,
		Declarations: survey.Declarations,
		Duplicates:   survey.Count(resolver.ClassDuplicate),
		Conflicts:    survey.Count(resolver.ClassConflict),
		Collisions:   survey.Count(resolver.ClassCollision),
	}
	output.Failures = makeSlice[fileFailure](len(survey.Failures))
	for _, f := range survey.Failures {
		output.Failures = append(output.Failures, fileFailure{
			Path:  pathutil.Display(input.Dirs, f.Path),
			Error: sanitizeError(f.Err),
		})
	}

	var matched []promoter.Group
	for _, g := range survey.Groups {
		if input.Class == "" || g.Class == input.Class {
			matched = append(matched, g)
		}
	}
	output.Matched = len(matched)
	page := paginate(matched, input.Offset, input.Limit)
	output.Returned = len(page)
	output.Groups = makeSlice[scanGroup](len(page))
	for _, g := range page {
		sg := scanGroup{Name: g.Name, Space: g.Space, Class: g.Class, Variants: g.Variants}
		for _, o := range g.Occurrences {
			sg.Occurrences = append(sg.Occurrences, scanOccurrence{
				Path:      pathutil.Display(input.Dirs, o.Path),
				Line:      o.Line,
				Kind:      o.Kind,
				Namespace: o.Namespace,
				Variant:   o.Variant,
			})
		}
		output.Groups = append(output.Groups, sg)
	}

	output.Summary = fmt.Sprintf("Scanned %s (%s): %s, %s, %s.",
		cliutil.Count(output.Files, "file"),
		cliutil.Count(output.Declarations, "declaration"),
		cliutil.Count(output.Duplicates, "identical duplicate"),
		cliutil.Count(output.Conflicts, "conflicting variant"),
		cliutil.Count(output.Collisions, "naming collision"))
	if len(output.Failures) > 0 {
		output.Summary += " " + cliutil.Count(len(output.Failures), "file") + " failed."
	}
	return nil, output, nil
}
