package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAttendance(c *gin.Context) {
	records, err := h.svc.ListAttendance(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetAttendance(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	rec, err := h.svc.GetAttendance(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RecordAttendance upserts the record for (student_id, class_id, date).
func (h *Handler) RecordAttendance(c *gin.Context) {
	var req attendanceRequest
	if !h.bind(c, &req) {
		return
	}
	rec, created, err := h.svc.RecordAttendance(c.Request.Context(), req.toModel())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(createdStatus(created), rec)
}

func (h *Handler) DeleteAttendance(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAttendance(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard returns the school-wide summary counts.
func (h *Handler) Dashboard(c *gin.Context) {
	sum, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
