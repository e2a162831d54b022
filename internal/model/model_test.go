package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	type payload struct {
		D Date `json:"d"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-03-09"}`), &p))
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 9}, p.D)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-09"}`, string(b))

	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-03-09T23:10:00Z"}`), &p))
	assert.Equal(t, MustDate("2024-03-09"), p.D)

	require.NoError(t, json.Unmarshal([]byte(`{"d":""}`), &p))
	assert.True(t, p.D.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"d":"09/03/2024"}`), &p))
}

func TestDate_Month(t *testing.T) {
	d := MustDate("2023-02-14")
	assert.Equal(t, MustDate("2023-02-01"), d.MonthStart())
	assert.Equal(t, MustDate("2023-02-28"), d.MonthEnd())
	assert.Equal(t, MustDate("2024-02-29"), MustDate("2024-02-01").MonthEnd())
	assert.Equal(t, MustDate("2024-01-01"), MustDate("2023-12-31").AddDays(1))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, MustDate("2024-05-01"), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, d.Scan(42))
}

func TestStudent_Validate(t *testing.T) {
	valid := Student{FirstName: "Ada", LastName: "Lovelace", Email: "ada@school.test", GradeLevel: GradeLevel10th, StudentID: "S-1"}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Email = "not-an-email"
	bad.GradeLevel = "13th"
	err := bad.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"email", "grade_level"}, fieldNames(verr))
}

func TestAssignment_Validate(t *testing.T) {
	a := Assignment{Name: "Quiz 1", Category: CategoryQuiz, PointsPossible: 0, ClassID: 1}
	err := a.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"points_possible"}, fieldNames(verr))
}

func TestAttendanceRecord_Normalize(t *testing.T) {
	r := AttendanceRecord{Status: StatusExcused}.Normalize()
	assert.Equal(t, DefaultExcuseReason, r.Reason)

	r = AttendanceRecord{Status: StatusExcused, Reason: "doctor"}.Normalize()
	assert.Equal(t, "doctor", r.Reason)

	r = AttendanceRecord{Status: StatusAbsent}.Normalize()
	assert.Empty(t, r.Reason)
}

func TestBatchError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&BatchError{Attempted: 3, Failures: []BatchFailure{{StudentID: 2, Error: cause.Error(), Err: cause}}})
	assert.EqualError(t, err, "1 of 3 writes failed")
	assert.ErrorIs(t, err, cause)
}

func fieldNames(verr *ValidationError) []string {
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}
