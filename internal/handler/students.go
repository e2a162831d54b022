package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classroom/internal/cloudinary"
	"classroom/internal/spreadsheet"
)

const (
	maxPhotoBytes  = 5 << 20
	maxRosterBytes = 10 << 20
)

// ListStudents returns all students, filtered by ?search= across first name,
// last name, email and student id.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.svc.ListStudents(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) GetStudent(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	st, err := h.svc.GetStudent(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) StudentClasses(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	classes, err := h.svc.StudentClasses(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var req studentRequest
	if !h.bind(c, &req) {
		return
	}
	st, err := h.svc.CreateStudent(c.Request.Context(), req.toModel(0))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// UpdateStudent replaces the student's fields. The photo is kept.
func (h *Handler) UpdateStudent(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req studentRequest
	if !h.bind(c, &req) {
		return
	}
	current, err := h.svc.GetStudent(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	next := req.toModel(id)
	next.PhotoURL = current.PhotoURL
	if next.EnrollmentDate.IsZero() {
		next.EnrollmentDate = current.EnrollmentDate
	}
	st, err := h.svc.UpdateStudent(c.Request.Context(), next)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteStudent(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto stores a student photo given as a multipart "file" or as JSON
// {"data": "<base64 data URL>"} and saves its URL on the student.
func (h *Handler) UploadPhoto(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if h.photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.svc.GetStudent(ctx, id); err != nil {
		h.fail(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	publicID := cloudinary.StudentPublicID(id)
	var result *cloudinary.UploadResult
	var err error
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read file failed"})
			return
		}
		result, err = h.photos.UploadBytes(ctx, publicID, data, header.Filename)
	} else {
		var req photoRequest
		if !h.bind(c, &req) {
			return
		}
		result, err = h.photos.UploadBase64(ctx, publicID, req.Data)
	}
	if err != nil {
		h.log.Warn("photo upload failed", zap.Int("student_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}

	st, err := h.svc.SetStudentPhoto(ctx, id, result.SecureURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ImportRoster creates students from an uploaded xlsx roster and enrolls them
// in ?class_id= when given.
func (h *Handler) ImportRoster(c *gin.Context) {
	classID, ok := intQuery(c, "class_id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRosterBytes)
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ReadRoster(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.ImportRoster(c.Request.Context(), classID, rows)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusCreated
	if len(res.Failures) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, res)
}

// RosterTemplate downloads an empty roster workbook.
func (h *Handler) RosterTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="roster.xlsx"`)
	c.Header("Content-Type", spreadsheet.ContentType)
	if err := spreadsheet.WriteRosterTemplate(c.Writer); err != nil {
		h.fail(c, err)
	}
}
