package spreadsheet

import (
	"io"

	"github.com/xuri/excelize/v2"

	"classroom/internal/gradebook"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheetWriter writes rows into one sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func newSheet(sheet string) *sheetWriter {
	f := excelize.NewFile()
	sw := &sheetWriter{f: f, sheet: sheet}
	sw.err = f.SetSheetName("Sheet1", sheet)
	return sw
}

func (sw *sheetWriter) append(values ...any) {
	if sw.err != nil {
		return
	}
	sw.row++
	start, err := excelize.CoordinatesToCellName(1, sw.row)
	if err != nil {
		sw.err = err
		return
	}
	sw.err = sw.f.SetSheetRow(sw.sheet, start, &values)
}

func (sw *sheetWriter) boldHeader(cols int) {
	if sw.err != nil || cols == 0 {
		return
	}
	style, err := sw.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		sw.err = err
		return
	}
	end, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		sw.err = err
		return
	}
	sw.err = sw.f.SetCellStyle(sw.sheet, "A1", end, style)
}

func (sw *sheetWriter) writeTo(w io.Writer) error {
	defer sw.f.Close()
	if sw.err != nil {
		return sw.err
	}
	return sw.f.Write(w)
}

// WriteGradebook renders a class gradebook as shown on screen: one row per
// student, one column per assignment, missing grades as the placeholder.
func WriteGradebook(w io.Writer, gb gradebook.Gradebook) error {
	sw := newSheet("Gradebook")

	header := []any{"Student", "Student ID"}
	for _, a := range gb.Assignments {
		header = append(header, a.Name)
	}
	header = append(header, "Average")
	sw.append(header...)
	sw.boldHeader(len(header))

	for _, row := range gb.Rows {
		values := []any{row.Student.Name(), row.Student.StudentID}
		for _, c := range row.Cells {
			if c.Recorded {
				values = append(values, c.Display+" ("+string(c.Letter)+")")
			} else {
				values = append(values, c.Display)
			}
		}
		values = append(values, row.Average)
		sw.append(values...)
	}
	return sw.writeTo(w)
}

// WriteAttendance renders a monthly attendance grid with the student's
// monthly stats in the trailing columns.
func WriteAttendance(w io.Writer, grid gradebook.MonthGrid) error {
	sw := newSheet("Attendance " + grid.Month)

	header := []any{"Student"}
	for _, d := range grid.Days {
		header = append(header, d.Day)
	}
	header = append(header, "Present", "Total", "%")
	sw.append(header...)
	sw.boldHeader(len(header))

	for _, row := range grid.Rows {
		values := []any{row.Student.Name()}
		for _, d := range row.Days {
			values = append(values, string(d.Status))
		}
		values = append(values, row.Stats.Present, row.Stats.Total, row.Stats.Percentage)
		sw.append(values...)
	}
	return sw.writeTo(w)
}
