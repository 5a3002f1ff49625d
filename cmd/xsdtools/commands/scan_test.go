package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdraley/xsdtools/internal/testutil"
)

func TestHandleScan_Text(t *testing.T) {
	dir := testutil.WriteTree(t, schemaTree())
	out, _ := captureOutput(t)

	require.NoError(t, HandleScan(context.Background(), []string{filepath.Join(dir, "schemas")}))

	text := out.String()
	assert.Contains(t, text, "AddressType [type] duplicate-identical")
	assert.Contains(t, text, "  Billing/billing.xsd:3 complexType variant 1")
	assert.Contains(t, text, "Money [type] conflicting-variant")
	assert.Contains(t, text, "Scanned 2 files (4 declarations): 1 identical duplicate, 1 conflicting variant, 0 naming collisions")
}

func TestHandleScan_JSONClassFilter(t *testing.T) {
	dir := testutil.WriteTree(t, schemaTree())
	out, _ := captureOutput(t)

	require.NoError(t, HandleScan(context.Background(), []string{
		"-class", "conflicting-variant", "-format", "json", filepath.Join(dir, "schemas"),
	}))

	var got scanOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got.Files)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, "Money", got.Groups[0].Name)
	assert.Equal(t, 2, got.Groups[0].Variants)
}

func TestHandleScan_Failures(t *testing.T) {
	dir := testutil.WriteTree(t, schemaTree())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "broken.xsd"), []byte("<xs:schema"), 0o644))
	_, errOut := captureOutput(t)

	err := HandleScan(context.Background(), []string{filepath.Join(dir, "schemas")})
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
	assert.Contains(t, errOut.String(), "malformed document")
}

func TestHandleScan_Errors(t *testing.T) {
	captureOutput(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no roots", nil, "at least one root"},
		{"bad class", []string{"-class", "odd", "."}, "invalid class"},
		{"bad kind", []string{"-kinds", "type", "."}, "invalid kind"},
		{"bad format", []string{"-format", "xml", "."}, "invalid format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleScan(context.Background(), tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
