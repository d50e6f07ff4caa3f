package output

import (
	"io"
	"reflect"
	"strconv"

	"github.com/halaqa/halaqa/pkg/consistency"
	"github.com/halaqa/halaqa/pkg/reconciler"
)

// Write renders raw as JSON or YAML, or tables in table format.
func Write(w io.Writer, format Format, raw any, tables []Data) error {
	switch format {
	case FormatJSON, FormatYAML:
		return NewFormatter(format).Format(w, raw)
	default:
		return NewFormatter(FormatTable).Format(w, tables)
	}
}

type checkSummary struct {
	Root         string `json:"root"`
	Total        int    `json:"total"`
	Consistent   int    `json:"consistent"`
	Inconsistent int    `json:"inconsistent"`
}

// CheckReportTables renders a consistency report as a summary table and,
// when any file failed, a table of failures.
func CheckReportTables(report *consistency.Report) []Data {
	summary := singleStructToTableData(reflect.ValueOf(checkSummary{
		Root:         report.Root,
		Total:        report.Total,
		Consistent:   report.Consistent,
		Inconsistent: report.Inconsistent,
	}))
	tables := []Data{*summary}

	failures := report.Failures()
	if len(failures) == 0 {
		return tables
	}

	rows := make([][]string, 0, len(failures))
	for _, res := range failures {
		reason := ""
		if res.Reason != nil {
			reason = res.Reason.String()
		}
		rows = append(rows, []string{res.Path, reason})
	}
	return append(tables, Data{
		Title:           "Inconsistent files",
		Headers:         []string{"File", "Reason"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	})
}

type convertSummary struct {
	Layout          string `json:"layout"`
	DryRun          bool   `json:"dry_run"`
	FilesFound      int    `json:"files_found"`
	FilesProcessed  int    `json:"files_processed"`
	FilesSkipped    int    `json:"files_skipped"`
	PersonsLoaded   int    `json:"persons_loaded"`
	PersonsCreated  int    `json:"persons_created"`
	PersonsTotal    int    `json:"persons_total"`
	EntriesLoaded   int    `json:"entries_loaded"`
	EntriesAdded    int    `json:"entries_added"`
	EntriesSkipped  int    `json:"entries_skipped"`
	EntriesReplaced int    `json:"entries_replaced"`
	Duration        string `json:"duration"`
}

// ConvertResultTables renders a reconciliation result as a summary table
// followed by the skipped and written files.
func ConvertResultTables(result *reconciler.Result) []Data {
	summary := singleStructToTableData(reflect.ValueOf(convertSummary{
		Layout:          result.Layout.String(),
		DryRun:          result.DryRun,
		FilesFound:      result.FilesFound,
		FilesProcessed:  result.FilesProcessed,
		FilesSkipped:    len(result.FilesSkipped),
		PersonsLoaded:   result.PersonsLoaded,
		PersonsCreated:  result.PersonsCreated,
		PersonsTotal:    result.PersonsTotal,
		EntriesLoaded:   result.EntriesLoaded,
		EntriesAdded:    result.EntriesAdded,
		EntriesSkipped:  result.EntriesSkipped,
		EntriesReplaced: result.EntriesReplaced,
		Duration:        result.Duration.String(),
	}))
	tables := []Data{*summary}

	if len(result.FilesSkipped) > 0 {
		skipped := structSliceToTableData(reflect.ValueOf(result.FilesSkipped))
		skipped.Title = "Skipped files"
		tables = append(tables, *skipped)
	}

	if len(result.Written) > 0 {
		rows := make([][]string, 0, len(result.Written))
		for i, path := range result.Written {
			rows = append(rows, []string{strconv.Itoa(i + 1), path})
		}
		tables = append(tables, Data{
			Title:           "Written files",
			Headers:         []string{"#", "Path"},
			Rows:            rows,
			ColumnAlignment: []Align{AlignRight, AlignLeft},
		})
	}
	return tables
}
