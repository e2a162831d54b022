package handler

import (
	"github.com/gin-gonic/gin"

	"classroom/internal/auth"
)

// Routes mounts the API on r. Everything under /v1 except the token
// endpoints requires a staff bearer token.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)

	r.POST("/v1/auth/token", h.IssueToken)
	r.POST("/v1/auth/refresh", h.RefreshToken)

	v1 := r.Group("/v1", auth.Bearer(h.signer), auth.RequireRole(auth.RoleStaff))

	students := v1.Group("/students")
	students.GET("", h.ListStudents)
	students.POST("", h.CreateStudent)
	students.GET("/:id", h.GetStudent)
	students.PUT("/:id", h.UpdateStudent)
	students.DELETE("/:id", h.DeleteStudent)
	students.GET("/:id/classes", h.StudentClasses)
	students.POST("/:id/photo", h.UploadPhoto)

	v1.POST("/roster/import", h.ImportRoster)
	v1.GET("/roster/template", h.RosterTemplate)

	classes := v1.Group("/classes")
	classes.GET("", h.ListClasses)
	classes.POST("", h.CreateClass)
	classes.GET("/:id", h.GetClass)
	classes.PUT("/:id", h.UpdateClass)
	classes.DELETE("/:id", h.DeleteClass)
	classes.GET("/:id/students", h.ClassStudents)
	classes.POST("/:id/students", h.Enroll)
	classes.DELETE("/:id/students/:student_id", h.Unenroll)
	classes.GET("/:id/gradebook", h.Gradebook)
	classes.GET("/:id/gradebook/export", h.ExportGradebook)
	classes.GET("/:id/attendance", h.ClassAttendance)
	classes.GET("/:id/attendance/export", h.ExportAttendance)
	classes.GET("/:id/attendance/stats", h.AttendanceStats)
	classes.POST("/:id/attendance/quick-mark", h.QuickMark)

	assignments := v1.Group("/assignments")
	assignments.GET("", h.ListAssignments)
	assignments.POST("", h.CreateAssignment)
	assignments.GET("/:id", h.GetAssignment)
	assignments.PUT("/:id", h.UpdateAssignment)
	assignments.DELETE("/:id", h.DeleteAssignment)

	grades := v1.Group("/grades")
	grades.GET("", h.ListGrades)
	grades.PUT("", h.SaveGrade)
	grades.GET("/:id", h.GetGrade)
	grades.PUT("/:id", h.UpdateGrade)
	grades.DELETE("/:id", h.DeleteGrade)

	attendance := v1.Group("/attendance")
	attendance.GET("", h.ListAttendance)
	attendance.PUT("", h.RecordAttendance)
	attendance.GET("/:id", h.GetAttendance)
	attendance.DELETE("/:id", h.DeleteAttendance)

	v1.GET("/dashboard", h.Dashboard)
}
