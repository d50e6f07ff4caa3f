package sheets

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/halaqa/halaqa/pkg/constants"
	"github.com/halaqa/halaqa/pkg/errors"
)

// Columns maps header names to their index and checks that every required
// column is present. path is only used for error reporting.
func Columns(path string, header []string, required ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, errors.NewParseError("csv", path, 1, "missing column "+name, nil)
		}
	}
	return index, nil
}

// Cell returns row[i] trimmed, or "" when the row is too short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// WriteFile replaces the table at path with header and rows. The table is
// written to a temporary sibling first and renamed into place.
func WriteFile(fsys afero.Fs, path string, header []string, rows [][]string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	tmp := path + ".tmp"
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", tmp, err)
	}
	if err := writeRows(f, header, rows); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return errors.WrapIO("write", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return errors.WrapIO("close", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// AppendFile appends rows to the table at path, writing header first only
// when the file does not exist yet.
func AppendFile(fsys afero.Fs, path string, header []string, rows [][]string) error {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return errors.WrapIO("stat", path, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	if exists {
		header = nil
	}
	if err := writeRows(f, header, rows); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if header != nil {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}
