package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mdraley/xsdtools/internal/pathutil"
	"github.com/mdraley/xsdtools/promoter"
)

type planInput struct {
	Dirs      []string          `json:"dirs"                 jsonschema:"Directories searched recursively for .xsd files"`
	Files     []string          `json:"files,omitempty"      jsonschema:"Additional individual .xsd files"`
	Common    string            `json:"common"               jsonschema:"Path of the common schema (created if missing)"`
	Namespace string            `json:"namespace"            jsonschema:"Target namespace of the common schema"`
	Prefix    string            `json:"prefix,omitempty"     jsonschema:"Prefix bound to the common namespace (default c)"`
	AutoPick  *bool             `json:"auto_pick,omitempty"  jsonschema:"Resolve conflicting variants by ranking instead of skipping them"`
	OnlyTypes []string          `json:"only_types,omitempty" jsonschema:"Restrict promotion to these names; listed names are promoted even when they occur once"`
	TierRoots []string          `json:"tier_roots,omitempty" jsonschema:"Directory tiers for auto_pick, highest first"`
	Overrides map[string]string `json:"overrides,omitempty"  jsonschema:"Map of name to the path suffix of the copy to keep"`
	Kinds     []string          `json:"kinds,omitempty"      jsonschema:"Declaration kinds eligible for promotion (default complexType, simpleType, group, attributeGroup)"`
}

type planPromotion struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Source     string `json:"source"`
	Line       int    `json:"line,omitempty"`
	Resolution string `json:"resolution"`
	Existing   bool   `json:"existing,omitempty"`
}

type planRecord struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Variants   int      `json:"variants"`
	Chosen     string   `json:"chosen,omitempty"`
	Others     []string `json:"others,omitempty"`
	Resolution string   `json:"resolution"`
	Detail     string   `json:"detail,omitempty"`
}

type planOutput struct {
	WouldPromote []planPromotion  `json:"would_promote,omitempty"`
	WouldDemote  int              `json:"would_demote"`
	WouldWrite   []string         `json:"would_write,omitempty"`
	Records      []planRecord     `json:"records,omitempty"`
	Failures     []fileFailure    `json:"failures,omitempty"`
	Counts       promoter.Summary `json:"counts"`
	Summary      string           `json:"summary"`
}

func handlePlanPromotion(ctx context.Context, _ *mcp.CallToolRequest, input planInput) (*mcp.CallToolResult, planOutput, error) {
	if len(input.Dirs) == 0 && len(input.Files) == 0 {
		return errResult(fmt.Errorf("at least one dir or file is required")), planOutput{}, nil
	}
	if input.Common == "" {
		return errResult(fmt.Errorf("common is required")), planOutput{}, nil
	}
	kinds, err := parseKinds(input.Kinds)
	if err != nil {
		return errResult(err), planOutput{}, nil
	}

	pc := promoter.DefaultConfig()
	pc.Roots = input.Dirs
	pc.Files = input.Files
	pc.CommonSchema = input.Common
	pc.Namespace = input.Namespace
	if input.Prefix != "" {
		pc.Prefix = input.Prefix
	}
	pc.AutoPick = cfg.AutoPick
	if input.AutoPick != nil {
		pc.AutoPick = *input.AutoPick
	}
	pc.OnlyTypes = input.OnlyTypes
	pc.TierRoots = input.TierRoots
	pc.Overrides = input.Overrides
	pc.Kinds = kinds
	pc.DryRun = true
	pc.SkipReport = true
	pc.Workers = cfg.Workers

	result, err := promoter.New(pc).Run(ctx)
	if err != nil {
		return errResult(err), planOutput{}, nil
	}

	show := func(path string) string { return pathutil.Display(input.Dirs, path) }
	output := planOutput{
		WouldDemote: len(result.Demotions),
		Counts:      result.Summary,
	}
	output.WouldPromote = makeSlice[planPromotion](len(result.Promotions))
	for _, p := range result.Promotions {
		output.WouldPromote = append(output.WouldPromote, planPromotion{
			Name:       p.Name,
			Kind:       string(p.Kind),
			Source:     show(p.Source),
			Line:       p.Line,
			Resolution: string(p.Resolution),
			Existing:   !p.Added,
		})
	}
	output.WouldWrite = makeSlice[string](len(result.Written))
	for _, w := range result.Written {
		output.WouldWrite = append(output.WouldWrite, show(w))
	}
	output.Records = makeSlice[planRecord](len(result.Records))
	for _, r := range result.Records {
		rec := planRecord{
			Name:       r.Name,
			Kind:       r.Kind,
			Variants:   r.Variants,
			Resolution: r.Resolution,
			Detail:     pathPattern.ReplaceAllString(r.Detail, "<path>"),
		}
		if r.Chosen != "" {
			rec.Chosen = show(r.Chosen)
		}
		for _, o := range r.Others {
			rec.Others = append(rec.Others, show(o))
		}
		output.Records = append(output.Records, rec)
	}
	output.Failures = makeSlice[fileFailure](len(result.Failures))
	for _, f := range result.Failures {
		output.Failures = append(output.Failures, fileFailure{Path: show(f.Path), Error: sanitizeError(f.Err)})
	}
	output.Summary = "Dry run: " + result.Summary.String() + "."
	return nil, output, nil
}
