package entries

import (
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"

	"github.com/halaqa/halaqa/pkg/constants"
	"github.com/halaqa/halaqa/pkg/errors"
	"github.com/halaqa/halaqa/pkg/sheets"
)

// Column names of the fact tables.
const (
	ColEntryID   = "entry_id"
	ColStudentID = "student_id"
	ColTeacherID = "teacher_id"
	ColEntryDate = "entry_date"
	ColDay       = "day"
	ColHifz      = "hifz"
	ColMurajaah  = "murajaah"
)

// LedgerHeader is the header of the append-only fact table.
var LedgerHeader = []string{ColEntryID, ColStudentID, ColTeacherID, ColEntryDate, ColHifz, ColMurajaah}

// MonthlyHeader is the header of a regenerated month partition.
var MonthlyHeader = []string{ColStudentID, ColTeacherID, ColDay, ColHifz, ColMurajaah}

// LoadLedger seeds set with every key of the ledger at path and returns the
// number of rows read. A missing ledger seeds nothing.
func LoadLedger(fsys afero.Fs, path string, set *Set) (int, error) {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return 0, errors.WrapIO("stat", path, err)
	}
	if !exists {
		return 0, nil
	}

	rows, err := sheets.ReadFile(fsys, path)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	cols, err := sheets.Columns(path, rows[0], ColEntryID, ColStudentID, ColTeacherID, ColEntryDate)
	if err != nil {
		return 0, err
	}

	for i, row := range rows[1:] {
		line := i + 2
		entryID, err := atoi(path, line, ColEntryID, sheets.Cell(row, cols[ColEntryID]))
		if err != nil {
			return 0, err
		}
		studentID, err := atoi(path, line, ColStudentID, sheets.Cell(row, cols[ColStudentID]))
		if err != nil {
			return 0, err
		}
		teacherID, err := atoi(path, line, ColTeacherID, sheets.Cell(row, cols[ColTeacherID]))
		if err != nil {
			return 0, err
		}
		key := Key{StudentID: studentID, TeacherID: teacherID, Locator: sheets.Cell(row, cols[ColEntryDate])}
		set.Seed(key, entryID)
	}
	return len(rows) - 1, nil
}

func atoi(path string, line int, column, cell string) (int, error) {
	v, err := strconv.Atoi(cell)
	if err != nil {
		return 0, errors.NewParseError("csv", path, line, column+" is not an integer", err)
	}
	return v, nil
}

// AppendLedger appends facts to the ledger at path, creating it with a
// header when needed. Previously persisted rows are left untouched.
func AppendLedger(fsys afero.Fs, path string, facts []Fact) error {
	rows := make([][]string, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, []string{
			strconv.Itoa(f.EntryID),
			strconv.Itoa(f.StudentID),
			strconv.Itoa(f.TeacherID),
			f.Date.String(),
			FormatScore(f.Hifz),
			FormatScore(f.Murajaah),
		})
	}
	return sheets.AppendFile(fsys, path, LedgerHeader, rows)
}

// Partition identifies one year/month output file.
type Partition struct {
	Year  string
	Month int
}

// Path returns the partition file under root.
func (p Partition) Path(root string) string {
	return filepath.Join(root, p.Year, strconv.Itoa(p.Month)+constants.SourceExt)
}

// SaveMonthly regenerates one file per partition. Every partition in scope
// is written, even when no fact falls into it, so a re-run never leaves
// stale rows behind; partitions reached only through facts are appended to
// the scope. It returns the written paths in that order.
func SaveMonthly(fsys afero.Fs, root string, scope []Partition, facts []Fact) ([]string, error) {
	order := make([]Partition, 0, len(scope))
	rows := make(map[Partition][][]string)
	for _, p := range scope {
		if _, ok := rows[p]; !ok {
			order = append(order, p)
			rows[p] = [][]string{}
		}
	}

	for _, f := range facts {
		p := Partition{Year: f.Date.Year, Month: f.Date.Month}
		if _, ok := rows[p]; !ok {
			order = append(order, p)
		}
		rows[p] = append(rows[p], []string{
			strconv.Itoa(f.StudentID),
			strconv.Itoa(f.TeacherID),
			strconv.Itoa(f.Date.Day),
			FormatScore(f.Hifz),
			FormatScore(f.Murajaah),
		})
	}

	paths := make([]string, 0, len(order))
	for _, p := range order {
		path := p.Path(root)
		if err := sheets.WriteFile(fsys, path, MonthlyHeader, rows[p]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
