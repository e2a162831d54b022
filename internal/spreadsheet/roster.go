// Package spreadsheet reads student rosters from and writes class reports to
// xlsx workbooks.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"classroom/internal/model"
)

// RosterColumns are the header names a roster sheet is read by. Order in the
// sheet does not matter; matching ignores case and surrounding spaces.
var RosterColumns = []string{"first_name", "last_name", "email", "student_id", "grade_level", "date_of_birth"}

var requiredColumns = []string{"first_name", "last_name", "email", "student_id", "grade_level"}

// RosterRow is one data row of a roster. Row is the 1-based sheet row. Err is
// set when a cell could not be parsed; Student is then partial.
type RosterRow struct {
	Row     int
	Student model.Student
	Err     error
}

// ReadRoster parses the first sheet of an xlsx workbook. The first row is the
// header. Blank rows are skipped.
func ReadRoster(r io.Reader) ([]RosterRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("roster has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("roster is empty")
	}

	index := make(map[string]int)
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("roster header is missing %s", strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]RosterRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rr := RosterRow{Row: i + 2}
		rr.Student = model.Student{
			FirstName:  cell(row, "first_name"),
			LastName:   cell(row, "last_name"),
			Email:      cell(row, "email"),
			StudentID:  cell(row, "student_id"),
			GradeLevel: model.GradeLevel(cell(row, "grade_level")),
		}
		if dob := cell(row, "date_of_birth"); dob != "" {
			d, err := model.ParseDate(dob)
			if err != nil {
				rr.Err = model.NewValidationError(model.FieldError{Field: "date_of_birth", Error: "must be YYYY-MM-DD"})
			}
			rr.Student.DateOfBirth = d
		}
		out = append(out, rr)
	}
	return out, nil
}

// WriteRosterTemplate writes an empty roster with the expected header.
func WriteRosterTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Roster"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, col := range RosterColumns {
		name, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, col); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
