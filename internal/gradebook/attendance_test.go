package gradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom/internal/model"
)

func TestStudentsOf(t *testing.T) {
	students := []model.Student{{ID: 3}, {ID: 1}, {ID: 2}, {ID: 4}}

	tests := []struct {
		name  string
		class model.ClassSection
		want  []int
	}{
		{name: "keeps input order", class: model.ClassSection{StudentIDs: []int{1, 2, 3}}, want: []int{3, 1, 2}},
		{name: "empty ids", class: model.ClassSection{StudentIDs: []int{}}, want: []int{}},
		{name: "nil ids", class: model.ClassSection{}, want: []int{}},
		{name: "unknown ids ignored", class: model.ClassSection{StudentIDs: []int{9, 4}}, want: []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StudentsOf(tt.class, students)
			require.NotNil(t, got)
			ids := make([]int, 0, len(got))
			for _, st := range got {
				ids = append(ids, st.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMonthlyStats(t *testing.T) {
	month := model.MustDate("2024-03-15")
	records := []model.AttendanceRecord{
		{StudentID: 1, ClassID: 7, Date: model.MustDate("2024-03-01"), Status: model.StatusPresent},
		{StudentID: 1, ClassID: 7, Date: model.MustDate("2024-03-31"), Status: model.StatusPresent},
		{StudentID: 1, ClassID: 7, Date: model.MustDate("2024-03-12"), Status: model.StatusAbsent},
		// outside the month
		{StudentID: 1, ClassID: 7, Date: model.MustDate("2024-02-29"), Status: model.StatusPresent},
		{StudentID: 1, ClassID: 7, Date: model.MustDate("2024-04-01"), Status: model.StatusPresent},
		// other class
		{StudentID: 1, ClassID: 8, Date: model.MustDate("2024-03-05"), Status: model.StatusAbsent},
	}

	assert.Equal(t, Stats{Present: 2, Total: 3, Percentage: 67}, MonthlyStats(1, 7, month, records))
	assert.Equal(t, Stats{Present: 0, Total: 0, Percentage: 0}, MonthlyStats(2, 7, month, records))
	assert.Equal(t, Stats{Present: 0, Total: 1, Percentage: 0}, MonthlyStats(1, 8, month, records))
}

func TestMonthlyStats_TardyAndExcusedAreNotPresent(t *testing.T) {
	month := model.MustDate("2024-01-01")
	records := []model.AttendanceRecord{
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-02"), Status: model.StatusPresent},
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-03"), Status: model.StatusTardy},
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-04"), Status: model.StatusExcused},
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-05"), Status: model.StatusPresent},
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-06"), Status: model.StatusPresent},
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-07"), Status: model.StatusPresent},
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-08"), Status: model.StatusAbsent},
		{StudentID: 1, ClassID: 1, Date: model.MustDate("2024-01-09"), Status: model.StatusAbsent},
	}
	// 4/8 = 50%
	assert.Equal(t, Stats{Present: 4, Total: 8, Percentage: 50}, MonthlyStats(1, 1, month, records))
}

func TestRatePercent(t *testing.T) {
	assert.Equal(t, 0, RatePercent(0, 0))
	assert.Equal(t, 67, RatePercent(2, 3))
	assert.Equal(t, 33, RatePercent(1, 3))
	assert.Equal(t, 100, RatePercent(5, 5))
	assert.Equal(t, 13, RatePercent(1, 8)) // 12.5 rounds up
}

func TestQuickMarkAll(t *testing.T) {
	class := model.ClassSection{ID: 4, StudentIDs: []int{1, 2, 3}}
	students := []model.Student{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 5}}
	date := model.MustDate("2024-05-06")

	ups := QuickMarkAll(class, date, model.StatusExcused, students)
	require.Len(t, ups, 3)
	for i, u := range ups {
		assert.Equal(t, i+1, u.StudentID)
		assert.Equal(t, 4, u.ClassID)
		assert.Equal(t, date, u.Date)
		assert.Equal(t, model.StatusExcused, u.Status)
		assert.Equal(t, model.DefaultExcuseReason, u.Reason)
	}

	none := QuickMarkAll(model.ClassSection{ID: 9}, date, model.StatusPresent, students)
	assert.Empty(t, none)
}

func TestClassMonth(t *testing.T) {
	class := model.ClassSection{ID: 1, StudentIDs: []int{1, 2}}
	students := []model.Student{{ID: 1}, {ID: 2}}
	records := []model.AttendanceRecord{
		{ID: 5, StudentID: 1, ClassID: 1, Date: model.MustDate("2024-02-29"), Status: model.StatusTardy},
		{ID: 6, StudentID: 2, ClassID: 2, Date: model.MustDate("2024-02-01"), Status: model.StatusPresent},
	}

	grid := ClassMonth(class, students, model.MustDate("2024-02-10"), records)
	assert.Equal(t, "2024-02", grid.Month)
	require.Len(t, grid.Days, 29)
	require.Len(t, grid.Rows, 2)

	last := grid.Rows[0].Days[28]
	assert.Equal(t, model.MustDate("2024-02-29"), last.Date)
	assert.Equal(t, model.StatusTardy, last.Status)
	assert.Equal(t, 5, last.RecordID)
	assert.Equal(t, Stats{Present: 0, Total: 1, Percentage: 0}, grid.Rows[0].Stats)

	for _, d := range grid.Rows[1].Days {
		assert.Empty(t, d.Status)
	}
}
