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
	"github.com/mdraley/xsdtools/promoter"
	"github.com/mdraley/xsdtools/schema"
)

func TestSetupPromoteFlags(t *testing.T) {
	fs, flags := SetupPromoteFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Equal(t, FormatText, flags.Format)
		assert.Equal(t, schema.DefaultBackupSuffix, flags.BackupSuffix)
		assert.False(t, flags.AutoPick)
		assert.Empty(t, flags.Roots)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{
			"--root", "a", "--root", "b,c", "--common", "Common.xsd", "--namespace", "urn:c",
			"--only", "AddressType,Money", "--override", "Money=orders.xsd",
			"--auto-pick", "--tier", "a", "-v", "extra",
		}
		require.NoError(t, fs.Parse(args))

		assert.Equal(t, listFlag{"a", "b", "c"}, flags.Roots)
		assert.Equal(t, "Common.xsd", flags.Common)
		assert.Equal(t, listFlag{"AddressType", "Money"}, flags.OnlyTypes)
		assert.Equal(t, overrideFlag{"Money": "orders.xsd"}, flags.Overrides)
		assert.True(t, flags.AutoPick)
		assert.True(t, flags.Verbose)
		assert.Equal(t, []string{"extra"}, fs.Args())
	})
}

func TestApplyPromoteFlags(t *testing.T) {
	base := promoter.DefaultConfig()
	base.Roots = []string{"from-file"}
	base.Namespace = "urn:file"
	base.AutoPick = true
	base.Overrides = map[string]string{"AddressType": "a.xsd"}

	t.Run("only given flags override", func(t *testing.T) {
		fs, flags := SetupPromoteFlags()
		require.NoError(t, fs.Parse([]string{"--namespace", "urn:flag", "--override", "Money=b.xsd"}))

		pc := base
		pc.Overrides = map[string]string{"AddressType": "a.xsd"}
		applyPromoteFlags(fs, flags, &pc)

		assert.Equal(t, []string{"from-file"}, pc.Roots)
		assert.Equal(t, "urn:flag", pc.Namespace)
		assert.True(t, pc.AutoPick, "unset flag must not reset the file value")
		assert.Equal(t, map[string]string{"AddressType": "a.xsd", "Money": "b.xsd"}, pc.Overrides)
		assert.Equal(t, schema.DefaultBackupSuffix, pc.BackupSuffix)
	})

	t.Run("explicit false and positional roots", func(t *testing.T) {
		fs, flags := SetupPromoteFlags()
		require.NoError(t, fs.Parse([]string{"--auto-pick=false", "--no-backup", "--kinds", "complexType", "x", "y"}))

		pc := base
		applyPromoteFlags(fs, flags, &pc)

		assert.Equal(t, []string{"x", "y"}, pc.Roots)
		assert.False(t, pc.AutoPick)
		assert.Empty(t, pc.BackupSuffix)
		assert.Equal(t, []schema.Kind{schema.KindComplexType}, pc.Kinds)
	})
}

func TestHandlePromote(t *testing.T) {
	dir := cleanEnv(t)
	testutil.WriteTreeAt(t, dir, schemaTree())
	out, _ := captureOutput(t)
	common := filepath.Join(dir, "schemas", "common", "Common.xsd")

	err := HandlePromote(context.Background(), []string{
		"--common", common, "--namespace", "urn:common", "--no-backup",
		"-q", "--format", "json", filepath.Join(dir, "schemas"),
	})
	require.NoError(t, err)

	var got promoteOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, 1, got.Summary.Promoted)
	assert.Equal(t, 2, got.Summary.Demoted)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Money", got.Records[0].Name)
	assert.Equal(t, promoter.ReportManualSkip, got.Records[0].Resolution)

	data, err := os.ReadFile(common)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name="AddressType"`)
	assert.FileExists(t, promoter.DefaultReportPath(common, promoter.FormatCSV))
}

func TestHandlePromote_ConfigFileAndEnv(t *testing.T) {
	dir := cleanEnv(t)
	testutil.WriteTreeAt(t, dir, schemaTree())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xsdtools.yaml"), []byte(`roots: [schemas]
common: schemas/common/Common.xsd
namespace: urn:file
backup_suffix: ""
`), 0o644))
	t.Setenv("XSDTOOLS_AUTO_PICK", "true")
	out, _ := captureOutput(t)

	err := HandlePromote(context.Background(), []string{"--dry-run", "--namespace", "urn:flag", "--format", "yaml"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "dry_run: true")
	assert.Contains(t, out.String(), "resolution: auto-pick")
	assert.NoFileExists(t, filepath.Join(dir, "schemas", "common", "Common.xsd"))
}

func TestHandlePromote_TextSummary(t *testing.T) {
	dir := cleanEnv(t)
	testutil.WriteTreeAt(t, dir, schemaTree())
	out, _ := captureOutput(t)

	err := HandlePromote(context.Background(), []string{
		"--common", filepath.Join(dir, "Common.xsd"), "--namespace", "urn:common",
		"--dry-run", filepath.Join(dir, "schemas"),
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "XSD Common-Type Promotion")
	assert.Contains(t, text, "Dry run: no schema files were written")
	assert.Contains(t, text, "complexType AddressType from")
	assert.Contains(t, text, "manual-skip")
	assert.Contains(t, text, "1 promoted")
}

func TestHandlePromote_Errors(t *testing.T) {
	cleanEnv(t)
	captureOutput(t)

	t.Run("help", func(t *testing.T) {
		assert.NoError(t, HandlePromote(context.Background(), []string{"--help"}))
	})

	t.Run("missing namespace", func(t *testing.T) {
		err := HandlePromote(context.Background(), []string{"--common", "Common.xsd", "schemas"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "namespace")
	})

	t.Run("bad format", func(t *testing.T) {
		err := HandlePromote(context.Background(), []string{"--format", "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("missing config file", func(t *testing.T) {
		err := HandlePromote(context.Background(), []string{"--config", "nope.yaml"})
		require.Error(t, err)
	})
}

func TestHandlePromote_StrictUnresolved(t *testing.T) {
	dir := cleanEnv(t)
	testutil.WriteTreeAt(t, dir, "-- schemas/a.xsd --\n"+xsdDoc("urn:a", `  <xs:element name="Order" type="tns:Missing"/>
`))
	captureOutput(t)

	err := HandlePromote(context.Background(), []string{
		"--common", filepath.Join(dir, "Common.xsd"), "--namespace", "urn:common",
		"--strict", "--dry-run", "-q", filepath.Join(dir, "schemas"),
	})
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
}
