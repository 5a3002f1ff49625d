package promoter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v4"

	"github.com/mdraley/xsdtools/internal/fileutil"
	"github.com/mdraley/xsdtools/xsderrors"
)

// Report resolutions.
const (
	ReportManualSkip          = "manual-skip"
	ReportAutoPick            = "auto-pick"
	ReportOverride            = "override"
	ReportNamingCollision     = "naming-collision"
	ReportBlockedDependency   = "blocked-dependency"
	ReportUnresolvedReference = "unresolved-reference"
)

// Report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidReportFormats returns the accepted report formats.
func ValidReportFormats() []string {
	return []string{FormatCSV, FormatJSON, FormatYAML}
}

// IsValidReportFormat reports whether format is accepted.
func IsValidReportFormat(format string) bool {
	switch format {
	case FormatCSV, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ConflictRecord is one row of the conflict report.
type ConflictRecord struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Variants int    `json:"variants" yaml:"variants"`
	// Chosen is the path of the kept copy, empty when nothing was chosen.
	Chosen     string   `json:"chosen,omitempty" yaml:"chosen,omitempty"`
	Others     []string `json:"others,omitempty" yaml:"others,omitempty"`
	Resolution string   `json:"resolution" yaml:"resolution"`
	Detail     string   `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Report is the persisted outcome of a run, meant for human review.
type Report struct {
	RunID     string           `json:"run_id" yaml:"run_id"`
	Generated time.Time        `json:"generated" yaml:"generated"`
	DryRun    bool             `json:"dry_run" yaml:"dry_run"`
	Summary   Summary          `json:"summary" yaml:"summary"`
	Records   []ConflictRecord `json:"records" yaml:"records"`
}

func newReport(dryRun bool) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Generated: time.Now().UTC(),
		DryRun:    dryRun,
	}
}

var csvHeader = []string{"name", "kind", "variants", "chosen", "others", "resolution", "detail"}

// Marshal encodes the report in format.
func (r *Report) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatCSV, "":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(csvHeader); err != nil {
			return nil, err
		}
		for _, rec := range r.Records {
			row := []string{
				rec.Name,
				rec.Kind,
				strconv.Itoa(rec.Variants),
				rec.Chosen,
				strings.Join(rec.Others, ";"),
				rec.Resolution,
				rec.Detail,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(r)
	default:
		return nil, &xsderrors.ConfigError{
			Option:  "report format",
			Value:   format,
			Message: fmt.Sprintf("expected one of %v", ValidReportFormats()),
		}
	}
}

// Write stores the report at path.
func (r *Report) Write(path, format string) error {
	data, err := r.Marshal(format)
	if err != nil {
		return fmt.Errorf("promoter: encoding report: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, fileutil.OwnerReadWrite); err != nil {
		return &xsderrors.IOError{Path: path, Op: "write report", Cause: err}
	}
	return nil
}

// DefaultReportPath returns the report path used when none is configured:
// the common schema's path with its extension replaced by
// ".conflicts.<format>".
func DefaultReportPath(commonPath, format string) string {
	if format == "" {
		format = FormatCSV
	}
	base := strings.TrimSuffix(commonPath, filepath.Ext(commonPath))
	return base + ".conflicts." + format
}
