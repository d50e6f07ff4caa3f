package identity

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"

	"github.com/halaqa/halaqa/pkg/errors"
	"github.com/halaqa/halaqa/pkg/sheets"
)

// Column names of the identity tables.
const (
	ColPersonID  = "person_id"
	ColUserID    = "user_id"
	ColName      = "name"
	ColRole      = "role"
	ColBirthYear = "birth_year"
)

// RoleTableHeader is the header of the three-column identity table.
var RoleTableHeader = []string{ColPersonID, ColName, ColRole}

// SignedTableHeader is the header of the signed-id identity table.
var SignedTableHeader = []string{ColUserID, ColName, ColBirthYear}

// Load reads the identity table at path into reg using the layout that
// matches reg's scheme. A missing file leaves reg empty and returns 0.
// Any malformed row fails the whole load: ids from a damaged table cannot
// be trusted to stay unique.
func Load(fsys afero.Fs, path string, reg *Registry) (int, error) {
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

	if reg.Scheme() == SchemeSigned {
		return loadSigned(path, rows, reg)
	}
	return loadRoles(path, rows, reg)
}

func loadRoles(path string, rows [][]string, reg *Registry) (int, error) {
	cols, err := sheets.Columns(path, rows[0], ColPersonID, ColName, ColRole)
	if err != nil {
		return 0, err
	}

	for i, row := range rows[1:] {
		line := i + 2
		id, err := strconv.Atoi(sheets.Cell(row, cols[ColPersonID]))
		if err != nil {
			return 0, errors.NewParseError("csv", path, line, "person_id is not an integer", err)
		}
		role, err := ParseRole(sheets.Cell(row, cols[ColRole]))
		if err != nil {
			return 0, errors.NewParseError("csv", path, line, err.Error(), err)
		}
		p := Person{ID: id, Name: sheets.Cell(row, cols[ColName]), Role: role}
		if err := reg.Add(p); err != nil {
			return 0, errors.NewParseError("csv", path, line, err.Error(), err)
		}
	}
	return len(rows) - 1, nil
}

func loadSigned(path string, rows [][]string, reg *Registry) (int, error) {
	cols, err := sheets.Columns(path, rows[0], ColUserID, ColName)
	if err != nil {
		return 0, err
	}
	birthCol, hasBirth := cols[ColBirthYear]

	for i, row := range rows[1:] {
		line := i + 2
		id, err := strconv.Atoi(sheets.Cell(row, cols[ColUserID]))
		if err != nil {
			return 0, errors.NewParseError("csv", path, line, "user_id is not an integer", err)
		}
		role, ok := RoleOf(id)
		if !ok {
			return 0, errors.NewParseError("csv", path, line, "user_id 0 has no role", nil)
		}
		p := Person{ID: id, Name: sheets.Cell(row, cols[ColName]), Role: role}
		if hasBirth {
			p.BirthYear = sheets.Cell(row, birthCol)
		}
		if err := reg.Add(p); err != nil {
			return 0, errors.NewParseError("csv", path, line, err.Error(), err)
		}
	}
	return len(rows) - 1, nil
}

// Save overwrites the identity table at path with every person in reg,
// in first-seen order.
func Save(fsys afero.Fs, path string, reg *Registry) error {
	people := reg.People()
	rows := make([][]string, 0, len(people))

	if reg.Scheme() == SchemeSigned {
		for _, p := range people {
			rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, p.BirthYear})
		}
		return sheets.WriteFile(fsys, path, SignedTableHeader, rows)
	}

	for _, p := range people {
		rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, string(p.Role)})
	}
	return sheets.WriteFile(fsys, path, RoleTableHeader, rows)
}

// String renders a person for log lines.
func (p Person) String() string {
	return fmt.Sprintf("%s (%s) -> id %d", p.Name, p.Role, p.ID)
}
