package school_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom/internal/cache"
	"classroom/internal/gradebook"
	"classroom/internal/model"
	"classroom/internal/queue"
	"classroom/internal/school"
	"classroom/internal/spreadsheet"
	"classroom/internal/store"
)

var (
	_ school.Store = (*store.Memory)(nil)
	_ school.Store = (*store.Postgres)(nil)
)

// recorder collects published messages.
type recorder struct {
	mu   sync.Mutex
	msgs []queue.Message
}

func (r *recorder) Publish(_ context.Context, msg queue.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Type)
	}
	return out
}

// flakyStore fails attendance writes for one student.
type flakyStore struct {
	*store.Memory
	failFor int
}

var errWrite = errors.New("write refused")

func (f *flakyStore) UpsertAttendance(ctx context.Context, a model.AttendanceRecord) (model.AttendanceRecord, bool, error) {
	if a.StudentID == f.failFor {
		return model.AttendanceRecord{}, false, errWrite
	}
	return f.Memory.UpsertAttendance(ctx, a)
}

// countingStore counts full student reads.
type countingStore struct {
	*store.Memory
	mu    sync.Mutex
	reads int
}

func (c *countingStore) ListStudents(ctx context.Context) ([]model.Student, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.Memory.ListStudents(ctx)
}

// blockingStore parks the next ListGrades call until released.
type blockingStore struct {
	*store.Memory
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) ListGrades(ctx context.Context) ([]model.Grade, error) {
	grades, err := b.Memory.ListGrades(ctx)
	if b.armed.CompareAndSwap(true, false) {
		close(b.entered)
		<-b.release
	}
	return grades, err
}

var today = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func newService(st school.Store) (*school.Service, *recorder) {
	rec := &recorder{}
	svc := school.New(school.Deps{
		Store:       st,
		Events:      rec,
		Cache:       cache.NewMemory(time.Minute),
		Parallelism: 2,
		Now:         func() time.Time { return today },
	})
	return svc, rec
}

func student(first, id string) model.Student {
	return model.Student{
		FirstName:  first,
		LastName:   "Student",
		Email:      first + "@school.test",
		GradeLevel: model.GradeLevel9th,
		StudentID:  id,
	}
}

// enrolled creates three students and a class holding all of them.
func enrolled(t *testing.T, svc *school.Service) model.ClassSection {
	t.Helper()
	ctx := context.Background()
	var ids []int
	for i, name := range []string{"ann", "ben", "cat"} {
		st, err := svc.CreateStudent(ctx, student(name, string(rune('A'+i))))
		require.NoError(t, err)
		ids = append(ids, st.ID)
	}
	class, err := svc.CreateClass(ctx, model.ClassSection{Name: "Algebra", Subject: model.SubjectMathematics, StudentIDs: ids})
	require.NoError(t, err)
	return class
}

func TestQuickMarkAll_PartialFailure(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{Memory: store.NewMemory(), failFor: 2}
	svc, _ := newService(fs)
	class := enrolled(t, svc)
	day := model.MustDate("2024-03-11")

	res, err := svc.QuickMarkAll(ctx, class.ID, day, model.StatusPresent)

	var batch *model.BatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, 3, batch.Attempted)
	assert.ErrorIs(t, err, errWrite)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].StudentID)

	marked := []int{}
	for _, r := range res.Marked {
		marked = append(marked, r.StudentID)
	}
	assert.ElementsMatch(t, []int{1, 3}, marked)

	stored, err := svc.ListAttendance(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestQuickMarkAll_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, rec := newService(store.NewMemory())
	class := enrolled(t, svc)
	day := model.MustDate("2024-03-11")

	_, err := svc.QuickMarkAll(ctx, class.ID, day, model.StatusAbsent)
	require.NoError(t, err)
	res, err := svc.QuickMarkAll(ctx, class.ID, day, model.StatusExcused)
	require.NoError(t, err)
	assert.Len(t, res.Marked, 3)
	assert.Empty(t, res.Failures)

	stored, _ := svc.ListAttendance(ctx)
	require.Len(t, stored, 3)
	for _, r := range stored {
		assert.Equal(t, model.StatusExcused, r.Status)
		assert.Equal(t, model.DefaultExcuseReason, r.Reason)
	}
	assert.Contains(t, rec.types(), queue.AttendanceChanged)

	_, err = svc.QuickMarkAll(ctx, 99, day, model.StatusPresent)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.QuickMarkAll(ctx, class.ID, model.Date{}, "late")
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
}

func TestSaveGrade_Upsert(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(store.NewMemory())
	class := enrolled(t, svc)
	quiz, err := svc.CreateAssignment(ctx, model.Assignment{Name: "Quiz", Category: model.CategoryQuiz, PointsPossible: 100, ClassID: class.ID})
	require.NoError(t, err)
	assert.Equal(t, 1.0, quiz.Weight, "zero weight defaults to 1")

	g := model.Grade{StudentID: 1, AssignmentID: quiz.ID, Score: 85}
	first, created, err := svc.SaveGrade(ctx, g)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.MustDate("2024-03-15"), first.SubmittedDate)

	second, created, err := svc.SaveGrade(ctx, g)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	grades, err := svc.ListGrades(ctx)
	require.NoError(t, err)
	assert.Len(t, grades, 1)

	_, _, err = svc.SaveGrade(ctx, model.Grade{StudentID: 1, AssignmentID: 404, Score: 1})
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestGradebook(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(store.NewMemory())
	class := enrolled(t, svc)
	quiz, err := svc.CreateAssignment(ctx, model.Assignment{Name: "Quiz", Category: model.CategoryQuiz, PointsPossible: 100, ClassID: class.ID})
	require.NoError(t, err)
	_, _, err = svc.SaveGrade(ctx, model.Grade{StudentID: 1, AssignmentID: quiz.ID, Score: 85})
	require.NoError(t, err)

	gb, err := svc.Gradebook(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, gb.Rows, 3)
	assert.Equal(t, "85/100", gb.Rows[0].Cells[0].Display)
	assert.Equal(t, gradebook.LetterB, gb.Rows[0].Cells[0].Letter)
	assert.Equal(t, gradebook.Placeholder, gb.Rows[1].Cells[0].Display)
	assert.False(t, gb.Rows[1].Cells[0].Recorded)

	_, err = svc.Gradebook(ctx, 42)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAttendanceStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(store.NewMemory())
	class := enrolled(t, svc)

	for i, status := range []model.AttendanceStatus{model.StatusPresent, model.StatusPresent, model.StatusAbsent} {
		_, _, err := svc.RecordAttendance(ctx, model.AttendanceRecord{
			StudentID: 1, ClassID: class.ID, Date: model.MustDate("2024-03-04").AddDays(i), Status: status,
		})
		require.NoError(t, err)
	}

	month := model.MustDate("2024-03-01")
	stats, err := svc.AttendanceStats(ctx, class.ID, 1, month)
	require.NoError(t, err)
	assert.Equal(t, gradebook.Stats{Present: 2, Total: 3, Percentage: 67}, stats)

	stats, err = svc.AttendanceStats(ctx, class.ID, 2, month)
	require.NoError(t, err)
	assert.Equal(t, gradebook.Stats{}, stats)

	grid, err := svc.ClassMonth(ctx, class.ID, month)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", grid.Month)
	assert.Len(t, grid.Days, 31)
	assert.Equal(t, model.StatusPresent, grid.Rows[0].Days[3].Status)
}

func TestRecordAttendance_ExcusedDefault(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(store.NewMemory())
	class := enrolled(t, svc)

	rec, created, err := svc.RecordAttendance(ctx, model.AttendanceRecord{
		StudentID: 3, ClassID: class.ID, Date: model.MustDate("2024-03-04"), Status: model.StatusExcused,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.DefaultExcuseReason, rec.Reason)
}

func TestClassMembership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(store.NewMemory())
	class := enrolled(t, svc)

	class.Room = "B12"
	class.StudentIDs = nil
	updated, err := svc.UpdateClass(ctx, class)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, updated.StudentIDs)
	assert.Equal(t, "B12", updated.Room)

	updated.StudentIDs = []int{3, 1, 3}
	updated, err = svc.UpdateClass(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, updated.StudentIDs)

	updated, err = svc.Enroll(ctx, class.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, updated.StudentIDs)

	_, err = svc.Enroll(ctx, class.ID, 77)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "student_id", verr.Fields[0].Field)

	require.NoError(t, svc.Unenroll(ctx, class.ID, 2))
	students, err := svc.ClassStudents(ctx, class.ID)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	classes, err := svc.StudentClasses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, class.ID, classes[0].ID)
}

func TestDeleteStudent_Cascades(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(store.NewMemory())
	class := enrolled(t, svc)
	quiz, err := svc.CreateAssignment(ctx, model.Assignment{Name: "Quiz", Category: model.CategoryQuiz, PointsPossible: 10, ClassID: class.ID})
	require.NoError(t, err)
	_, _, err = svc.SaveGrade(ctx, model.Grade{StudentID: 1, AssignmentID: quiz.ID, Score: 9})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteStudent(ctx, 1))
	grades, _ := svc.ListGrades(ctx)
	assert.Empty(t, grades)
	got, _ := svc.GetClass(ctx, class.ID)
	assert.Equal(t, []int{2, 3}, got.StudentIDs)

	assert.ErrorIs(t, svc.DeleteStudent(ctx, 1), model.ErrNotFound)
}

func TestDashboard_CacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	cs := &countingStore{Memory: store.NewMemory()}
	svc, rec := newService(cs)
	enrolled(t, svc)

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, gradebook.Summary{TotalStudents: 3, TotalClasses: 1, AverageGPA: "0.0"}, first)
	reads := cs.reads

	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, reads, cs.reads, "second read is served from the cache")

	_, err = svc.CreateStudent(ctx, student("dan", "D"))
	require.NoError(t, err)
	after, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, after.TotalStudents)

	assert.Equal(t, []string{
		queue.StudentChanged, queue.StudentChanged, queue.StudentChanged,
		queue.ClassChanged,
		queue.StudentChanged,
	}, rec.types())
}

func TestDashboard_InvalidateDuringRefresh(t *testing.T) {
	ctx := context.Background()
	bs := &blockingStore{
		Memory:  store.NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newService(bs)
	class := enrolled(t, svc)
	quiz, err := svc.CreateAssignment(ctx, model.Assignment{Name: "Quiz", Category: model.CategoryQuiz, PointsPossible: 100, ClassID: class.ID})
	require.NoError(t, err)

	bs.armed.Store(true)
	done := make(chan gradebook.Summary)
	go func() {
		sum, err := svc.Dashboard(ctx)
		assert.NoError(t, err)
		done <- sum
	}()

	<-bs.entered
	_, _, err = svc.SaveGrade(ctx, model.Grade{StudentID: 1, AssignmentID: quiz.ID, Score: 100})
	require.NoError(t, err)
	close(bs.release)

	stale := <-done
	assert.Equal(t, "0.0", stale.AverageGPA)

	sum, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4.0", sum.AverageGPA, "summary computed before the write is not cached")
}

func TestCreateStudent_Validation(t *testing.T) {
	ctx := context.Background()
	svc, rec := newService(store.NewMemory())

	_, err := svc.CreateStudent(ctx, model.Student{FirstName: "  "})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, rec.types(), "failed writes publish nothing")

	st, err := svc.CreateStudent(ctx, student("eve", "E"))
	require.NoError(t, err)
	assert.Equal(t, model.MustDate("2024-03-15"), st.EnrollmentDate)

	found, err := svc.ListStudents(ctx, "EVE")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestImportRoster(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(store.NewMemory())
	class, err := svc.CreateClass(ctx, model.ClassSection{Name: "Biology", Subject: model.SubjectBiology})
	require.NoError(t, err)

	rows := []spreadsheet.RosterRow{
		{Row: 2, Student: student("fay", "F")},
		{Row: 3, Student: model.Student{FirstName: "Gus"}},
		{Row: 4, Student: student("hal", "H"), Err: errors.New("bad date")},
	}
	res, err := svc.ImportRoster(ctx, class.ID, rows)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, 3, res.Failures[0].Row)
	assert.Equal(t, 4, res.Failures[1].Row)

	got, err := svc.GetClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{res.Created[0].ID}, got.StudentIDs)

	_, err = svc.ImportRoster(ctx, 99, rows)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
