package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mdraley/xsdtools/collisions"
	"github.com/mdraley/xsdtools/internal/cliutil"
	"github.com/mdraley/xsdtools/schema"
)

type findCollisionsInput struct {
	Path     string `json:"path"                jsonschema:"Path to the .xsd file"`
	FoldCase *bool  `json:"fold_case,omitempty" jsonschema:"Group names case-insensitively"`
}

type findCollisionsOutput struct {
	File       string             `json:"file"`
	GroupCount int                `json:"group_count"`
	Groups     []collisions.Group `json:"groups,omitempty"`
	Summary    string             `json:"summary"`
}

func handleFindCollisions(_ context.Context, _ *mcp.CallToolRequest, input findCollisionsInput) (*mcp.CallToolResult, findCollisionsOutput, error) {
	if input.Path == "" {
		return errResult(fmt.Errorf("path is required")), findCollisionsOutput{}, nil
	}
	fold := cfg.FoldCase
	if input.FoldCase != nil {
		fold = *input.FoldCase
	}

	doc, err := schema.NewStore().Load(input.Path)
	if err != nil {
		return errResult(err), findCollisionsOutput{}, nil
	}
	groups := collisions.Find(doc, collisions.FindOptions{FoldCase: fold})

	output := findCollisionsOutput{
		File:       filepath.Base(input.Path),
		GroupCount: len(groups),
		Groups:     groups,
	}
	if len(groups) == 0 {
		output.Summary = "No duplicate global names found."
	} else {
		output.Summary = cliutil.Count(len(groups), "duplicate name group") + " found."
	}
	return nil, output, nil
}
