// Package consistency classifies source tables by comparing their header
// row against the expected monthly sheet layout. It has no side effects:
// reporting the results is left to the caller.
package consistency

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/halaqa/halaqa/pkg/constants"
	"github.com/halaqa/halaqa/pkg/logging"
	"github.com/halaqa/halaqa/pkg/sheets"
)

// Code identifies why a table is inconsistent.
type Code string

// Reason codes.
const (
	CodeTooFewRows          Code = "too_few_rows"
	CodeHeaderStartMismatch Code = "header_start_mismatch"
	CodeColumnCountMismatch Code = "column_count_mismatch"
	CodeReadError           Code = "read_error"
)

// Reason explains an inconsistent classification. Only the fields relevant
// to Code are set.
type Reason struct {
	Code     Code     `json:"code" yaml:"code"`
	Prefix   []string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Actual   int      `json:"actual,omitempty" yaml:"actual,omitempty"`
	Expected int      `json:"expected,omitempty" yaml:"expected,omitempty"`
	Message  string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// String renders the reason for humans.
func (r Reason) String() string {
	switch r.Code {
	case CodeTooFewRows:
		return "Too few rows"
	case CodeHeaderStartMismatch:
		return fmt.Sprintf("Header start mismatch: [%s]", strings.Join(r.Prefix, ", "))
	case CodeColumnCountMismatch:
		return fmt.Sprintf("Col count mismatch: %d vs %d", r.Actual, r.Expected)
	case CodeReadError:
		return "Read Error: " + r.Message
	default:
		return string(r.Code)
	}
}

// Result is the classification of one table.
type Result struct {
	Path       string  `json:"path" yaml:"path"`
	Consistent bool    `json:"consistent" yaml:"consistent"`
	Reason     *Reason `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Schema describes the expected header of a monthly sheet.
type Schema struct {
	// Prefix holds the fixed leading labels.
	Prefix []string
	// PairLabels labels the two score columns repeated per day.
	PairLabels [2]string
	// Days is the reporting period length.
	Days int
}

// DefaultSchema returns the 30-day sheet layout.
func DefaultSchema() Schema {
	return Schema{
		Prefix:     []string{constants.StudentNameLabel, constants.AgeLabel, constants.TeacherNameLabel},
		PairLabels: [2]string{constants.HifzLabel, constants.MurajaahLabel},
		Days:       constants.DefaultDayColumns,
	}
}

// Header builds the full expected header row.
func (s Schema) Header() []string {
	header := slices.Clone(s.Prefix)
	for i := 0; i < s.Days; i++ {
		header = append(header, s.PairLabels[0], s.PairLabels[1])
	}
	return header
}

// Checker classifies source tables against a Schema.
type Checker struct {
	fs     afero.Fs
	schema Schema
}

// New creates a Checker reading from fsys.
func New(fsys afero.Fs, schema Schema) *Checker {
	return &Checker{fs: fsys, schema: schema}
}

// CheckRows classifies the non-empty rows of a table.
func (c *Checker) CheckRows(rows [][]string) Result {
	if len(rows) < constants.MinCheckRows {
		return inconsistent(Reason{Code: CodeTooFewRows})
	}

	header := make([]string, len(rows[constants.HeaderRow]))
	for i, cell := range rows[constants.HeaderRow] {
		header[i] = strings.TrimSpace(cell)
	}

	expected := c.schema.Header()
	prefix := header[:min(len(c.schema.Prefix), len(header))]
	if !slices.Equal(prefix, c.schema.Prefix) {
		return inconsistent(Reason{Code: CodeHeaderStartMismatch, Prefix: prefix})
	}
	if len(header) != len(expected) {
		return inconsistent(Reason{Code: CodeColumnCountMismatch, Actual: len(header), Expected: len(expected)})
	}
	return Result{Consistent: true}
}

// CheckFile reads and classifies the table at path. Read failures are
// classified, never returned.
func (c *Checker) CheckFile(path string) Result {
	var result Result
	rows, err := sheets.ReadFile(c.fs, path)
	if err != nil {
		result = inconsistent(Reason{Code: CodeReadError, Message: err.Error()})
	} else {
		result = c.CheckRows(rows)
	}
	result.Path = path
	return result
}

// Report summarises a scan.
type Report struct {
	Root         string   `json:"root" yaml:"root"`
	Total        int      `json:"total" yaml:"total"`
	Consistent   int      `json:"consistent" yaml:"consistent"`
	Inconsistent int      `json:"inconsistent" yaml:"inconsistent"`
	Results      []Result `json:"results" yaml:"results"`
}

// Failures returns the inconsistent results in scan order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Consistent {
			out = append(out, res)
		}
	}
	return out
}

// Scan classifies every source table under root, recursively.
func (c *Checker) Scan(ctx context.Context, root string) (*Report, error) {
	logger := logging.FromContext(ctx)

	sources, err := sheets.Discover(c.fs, root, true, "")
	if err != nil {
		return nil, err
	}

	report := &Report{Root: root, Total: len(sources)}
	for _, src := range sources {
		result := c.CheckFile(src.Path)
		if result.Consistent {
			report.Consistent++
			logger.Debug().Str("file", src.Path).Msg("Consistent")
		} else {
			report.Inconsistent++
			logger.Debug().Str("file", src.Path).Str("reason", result.Reason.String()).Msg("Inconsistent")
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func inconsistent(reason Reason) Result {
	return Result{Reason: &reason}
}
