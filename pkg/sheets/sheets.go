// Package sheets discovers and reads the spreadsheet-exported source tables.
//
// Sources live under a base directory partitioned by year (a directory) and
// month (the numeric filename stem), for example data/processed/1447/5.csv.
// Reading strips an optional byte-order mark, rejects text that is not valid
// UTF-8 and drops rows whose cells are all empty.
package sheets

import (
	"bytes"
	"encoding/csv"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/halaqa/halaqa/pkg/constants"
	"github.com/halaqa/halaqa/pkg/errors"
)

// Source is one discovered source table.
type Source struct {
	// Path of the table on the filesystem.
	Path string
	// Year is the year partition label (the parent directory name unless a
	// year was configured).
	Year string
	// Stem is the filename without extension.
	Stem string
}

// Month parses the numeric month from the filename stem.
func (s Source) Month() (int, error) {
	month, err := strconv.Atoi(strings.TrimSpace(s.Stem))
	if err != nil || month < 1 {
		return 0, errors.NewStructuralError(s.Path, "month partition is not numeric", s.Stem)
	}
	return month, nil
}

// CheckYear reports a StructuralError when the year label is not a
// number, as for a table sitting directly under the source root.
func (s Source) CheckYear() error {
	if s.Year == "" || strings.TrimLeft(s.Year, "0123456789") != "" {
		return errors.NewStructuralError(s.Path, "year partition is not numeric", s.Year)
	}
	return nil
}

// Discover lists the source tables under root sorted by path. When
// recursive is false only the files directly inside root are returned.
// A non-empty year overrides the partition label taken from the directory.
// A missing root is a NotFoundError.
func Discover(fsys afero.Fs, root string, recursive bool, year string) ([]Source, error) {
	exists, err := afero.DirExists(fsys, root)
	if err != nil {
		return nil, errors.WrapIO("stat", root, err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("source directory", root)
	}

	var paths []string

	if recursive {
		err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && isSource(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapIO("walk", root, err)
		}
	} else {
		infos, err := afero.ReadDir(fsys, root)
		if err != nil {
			return nil, errors.WrapIO("read", root, err)
		}
		for _, info := range infos {
			path := filepath.Join(root, info.Name())
			if !info.IsDir() && isSource(path) {
				paths = append(paths, path)
			}
		}
	}

	sort.Strings(paths)

	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		src := Source{
			Path: path,
			Year: year,
			Stem: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		}
		if src.Year == "" {
			src.Year = filepath.Base(filepath.Dir(path))
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func isSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), constants.SourceExt)
}

// ReadFile reads every non-empty row of the table at path. Any failure to
// read or decode the file is returned as an errors.DecodeError.
func ReadFile(fsys afero.Fs, path string) ([][]string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.NewDecodeError(path, err)
	}
	rows, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewDecodeError(path, err)
	}
	return rows, nil
}

// Parse decodes CSV from r, honouring a leading byte-order mark, and drops
// rows in which every cell is empty.
func Parse(r io.Reader) ([][]string, error) {
	// A BOM selects its own decoder; without one the text must be UTF-8.
	decoded := transform.NewReader(r, unicode.BOMOverride(encoding.UTF8Validator))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !IsEmptyRow(record) {
			rows = append(rows, record)
		}
	}
	return rows, nil
}

// IsEmptyRow reports whether no cell of row holds any text.
func IsEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
