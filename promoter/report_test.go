package promoter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/mdraley/xsdtools/internal/fileutil"
	"github.com/mdraley/xsdtools/xsderrors"
)

func sampleReport() *Report {
	r := newReport(false)
	r.Summary = Summary{FilesScanned: 2, Conflicts: 1}
	r.Records = []ConflictRecord{{
		Name:       "AddressType",
		Kind:       "complexType",
		Variants:   2,
		Others:     []string{"a.xsd", "b,c.xsd"},
		Resolution: ReportManualSkip,
		Detail:     "conflicting variant",
	}}
	return r
}

func TestReport_CSV(t *testing.T) {
	data, err := sampleReport().Marshal(FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "name,kind,variants,chosen,others,resolution,detail\n"+
		"AddressType,complexType,2,,\"a.xsd;b,c.xsd\",manual-skip,conflicting variant\n", string(data))
}

func TestReport_JSON(t *testing.T) {
	r := sampleReport()
	data, err := r.Marshal(FormatJSON)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	_, err = uuid.Parse(got["run_id"].(string))
	assert.NoError(t, err)
	assert.Equal(t, float64(2), got["summary"].(map[string]any)["files_scanned"])
	records := got["records"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, "manual-skip", records[0].(map[string]any)["resolution"])
	assert.NotContains(t, records[0], "chosen")
}

func TestReport_YAML(t *testing.T) {
	data, err := sampleReport().Marshal(FormatYAML)
	require.NoError(t, err)

	var got struct {
		RunID   string           `yaml:"run_id"`
		Records []ConflictRecord `yaml:"records"`
	}
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Records, 1)
	assert.Equal(t, []string{"a.xsd", "b,c.xsd"}, got.Records[0].Others)
}

func TestReport_UnknownFormat(t *testing.T) {
	_, err := sampleReport().Marshal("xml")
	assert.ErrorIs(t, err, xsderrors.ErrConfig)
}

func TestReport_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	require.NoError(t, sampleReport().Write(path, FormatCSV))

	assert.Equal(t, fileutil.OwnerReadWrite, fileutil.ModeOf(path, 0))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AddressType")
}

func TestDefaultReportPath(t *testing.T) {
	assert.Equal(t, filepath.Join("schemas", "Common.conflicts.csv"),
		DefaultReportPath(filepath.Join("schemas", "Common.xsd"), ""))
	assert.Equal(t, "Common.conflicts.json", DefaultReportPath("Common.xsd", FormatJSON))
}

func TestIsValidReportFormat(t *testing.T) {
	for _, f := range ValidReportFormats() {
		assert.True(t, IsValidReportFormat(f))
	}
	assert.False(t, IsValidReportFormat("xml"))
}
