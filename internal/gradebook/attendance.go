package gradebook

import (
	"math"

	"classroom/internal/model"
)

// Stats are a student's attendance counts over a window.
type Stats struct {
	Present    int `json:"present"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// RatePercent rounds part/whole*100 to the nearest integer (halves away from
// zero), or 0 when whole is 0.
func RatePercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// MonthlyStats counts the student's records in classID whose date falls in
// month's calendar month, both ends inclusive.
func MonthlyStats(studentID, classID int, month model.Date, records []model.AttendanceRecord) Stats {
	start, end := month.MonthStart(), month.MonthEnd()
	var st Stats
	for _, r := range records {
		if r.StudentID != studentID || r.ClassID != classID {
			continue
		}
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		st.Total++
		if r.Status == model.StatusPresent {
			st.Present++
		}
	}
	st.Percentage = RatePercent(st.Present, st.Total)
	return st
}

// QuickMarkAll returns one attendance upsert per student enrolled in class.
// Each is independent of the others; the store resolves create vs update by
// key.
func QuickMarkAll(class model.ClassSection, date model.Date, status model.AttendanceStatus, all []model.Student) []model.AttendanceRecord {
	enrolled := StudentsOf(class, all)
	out := make([]model.AttendanceRecord, 0, len(enrolled))
	for _, st := range enrolled {
		out = append(out, model.AttendanceRecord{
			StudentID: st.ID,
			ClassID:   class.ID,
			Date:      date,
			Status:    status,
		}.Normalize())
	}
	return out
}

// DayCell is one day of a student's month.
type DayCell struct {
	Date     model.Date             `json:"date"`
	RecordID int                    `json:"record_id,omitempty"`
	Status   model.AttendanceStatus `json:"status,omitempty"`
}

// MonthRow is one student's line in the monthly attendance grid.
type MonthRow struct {
	Student model.Student `json:"student"`
	Days    []DayCell     `json:"days"`
	Stats   Stats         `json:"stats"`
}

// MonthGrid is the attendance grid for one class and month.
type MonthGrid struct {
	Class model.ClassSection `json:"class"`
	Month string             `json:"month"`
	Days  []model.Date       `json:"days"`
	Rows  []MonthRow         `json:"rows"`
}

// MonthDays returns every day of month's calendar month.
func MonthDays(month model.Date) []model.Date {
	end := month.MonthEnd()
	days := make([]model.Date, 0, end.Day)
	for d := month.MonthStart(); !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// ClassMonth builds the monthly grid for the students enrolled in class.
// Days without a record have an empty status.
func ClassMonth(class model.ClassSection, students []model.Student, month model.Date, records []model.AttendanceRecord) MonthGrid {
	days := MonthDays(month)
	byKey := make(map[model.AttendanceKey]model.AttendanceRecord)
	for _, r := range records {
		if r.ClassID != class.ID {
			continue
		}
		if _, dup := byKey[r.Key()]; !dup {
			byKey[r.Key()] = r
		}
	}

	enrolled := StudentsOf(class, students)
	rows := make([]MonthRow, 0, len(enrolled))
	for _, st := range enrolled {
		row := MonthRow{Student: st, Days: make([]DayCell, 0, len(days))}
		for _, d := range days {
			cell := DayCell{Date: d}
			if r, ok := byKey[model.AttendanceKey{StudentID: st.ID, ClassID: class.ID, Date: d}]; ok {
				cell.RecordID = r.ID
				cell.Status = r.Status
			}
			row.Days = append(row.Days, cell)
		}
		row.Stats = MonthlyStats(st.ID, class.ID, month, records)
		rows = append(rows, row)
	}
	return MonthGrid{
		Class: class,
		Month: month.Time().Format("2006-01"),
		Days:  days,
		Rows:  rows,
	}
}
