package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom/internal/model"
	"classroom/internal/spreadsheet"
)

func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.svc.ListClasses(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *Handler) GetClass(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	class, err := h.svc.GetClass(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *Handler) CreateClass(c *gin.Context) {
	var req classRequest
	if !h.bind(c, &req) {
		return
	}
	class, err := h.svc.CreateClass(c.Request.Context(), req.toModel(0))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *Handler) UpdateClass(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req classRequest
	if !h.bind(c, &req) {
		return
	}
	class, err := h.svc.UpdateClass(c.Request.Context(), req.toModel(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *Handler) DeleteClass(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteClass(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Membership ----------

func (h *Handler) ClassStudents(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	students, err := h.svc.ClassStudents(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) Enroll(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req enrollRequest
	if !h.bind(c, &req) {
		return
	}
	class, err := h.svc.Enroll(c.Request.Context(), id, req.StudentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *Handler) Unenroll(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := intParam(c, "student_id")
	if !ok {
		return
	}
	if err := h.svc.Unenroll(c.Request.Context(), id, studentID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Gradebook ----------

func (h *Handler) Gradebook(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	gb, err := h.svc.Gradebook(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gb)
}

func (h *Handler) ExportGradebook(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	gb, err := h.svc.Gradebook(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, fmt.Sprintf("gradebook-class-%d.xlsx", id))
	if err := spreadsheet.WriteGradebook(c.Writer, gb); err != nil {
		h.fail(c, err)
	}
}

// ---------- Attendance ----------

// ClassAttendance returns the class attendance grid for ?month=YYYY-MM.
func (h *Handler) ClassAttendance(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	month, ok := h.monthQuery(c)
	if !ok {
		return
	}
	grid, err := h.svc.ClassMonth(c.Request.Context(), id, month)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

func (h *Handler) ExportAttendance(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	month, ok := h.monthQuery(c)
	if !ok {
		return
	}
	grid, err := h.svc.ClassMonth(c.Request.Context(), id, month)
	if err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, fmt.Sprintf("attendance-class-%d-%04d-%02d.xlsx", id, month.Year, int(month.Month)))
	if err := spreadsheet.WriteAttendance(c.Writer, grid); err != nil {
		h.fail(c, err)
	}
}

// AttendanceStats returns one student's monthly present/total/percentage.
func (h *Handler) AttendanceStats(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := intQuery(c, "student_id")
	if !ok {
		return
	}
	if studentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
		return
	}
	month, ok := h.monthQuery(c)
	if !ok {
		return
	}
	stats, err := h.svc.AttendanceStats(c.Request.Context(), id, studentID, month)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// QuickMark records one status for every enrolled student. A partial failure
// answers 207 with both the marked records and the failures.
func (h *Handler) QuickMark(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req quickMarkRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Date.IsZero() {
		req.Date = model.DateOf(h.now())
	}
	res, err := h.svc.QuickMarkAll(c.Request.Context(), id, req.Date, req.Status)
	var batch *model.BatchError
	switch {
	case errors.As(err, &batch):
		c.JSON(http.StatusMultiStatus, res)
	case err != nil:
		h.fail(c, err)
	default:
		c.JSON(http.StatusOK, res)
	}
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", spreadsheet.ContentType)
}
