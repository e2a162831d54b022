package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListAssignments returns all assignments, or those of ?class_id= when given.
func (h *Handler) ListAssignments(c *gin.Context) {
	classID, ok := intQuery(c, "class_id")
	if !ok {
		return
	}
	list, err := h.svc.ListAssignments(c.Request.Context(), classID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetAssignment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.GetAssignment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAssignment(c *gin.Context) {
	var req assignmentRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.svc.CreateAssignment(c.Request.Context(), req.toModel(0))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAssignment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req assignmentRequest
	if !h.bind(c, &req) {
		return
	}
	a, err := h.svc.UpdateAssignment(c.Request.Context(), req.toModel(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAssignment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAssignment(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Grades ----------

func (h *Handler) ListGrades(c *gin.Context) {
	grades, err := h.svc.ListGrades(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grades)
}

func (h *Handler) GetGrade(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	g, err := h.svc.GetGrade(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// SaveGrade upserts the grade for (student_id, assignment_id): 201 when a
// record was created, 200 when the existing one was updated.
func (h *Handler) SaveGrade(c *gin.Context) {
	var req gradeRequest
	if !h.bind(c, &req) {
		return
	}
	g, created, err := h.svc.SaveGrade(c.Request.Context(), req.toModel(0))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(createdStatus(created), g)
}

func (h *Handler) UpdateGrade(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req gradeRequest
	if !h.bind(c, &req) {
		return
	}
	g, err := h.svc.UpdateGrade(c.Request.Context(), req.toModel(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteGrade(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteGrade(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
