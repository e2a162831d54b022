// Package handler exposes the school service over a JSON HTTP API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"classroom/internal/auth"
	"classroom/internal/cloudinary"
	"classroom/internal/httpmiddleware"
	"classroom/internal/model"
	"classroom/internal/school"
)

// PhotoUploader stores student photos and returns their public URL.
type PhotoUploader interface {
	UploadBytes(ctx context.Context, publicID string, data []byte, filename string) (*cloudinary.UploadResult, error)
	UploadBase64(ctx context.Context, publicID, data string) (*cloudinary.UploadResult, error)
}

// Checker reports the health of one dependency.
type Checker func(ctx context.Context) error

// Handler serves the HTTP API.
type Handler struct {
	svc    *school.Service
	signer *auth.Signer
	staff  auth.Staff
	photos PhotoUploader // nil if photo storage is not configured
	checks map[string]Checker
	log    *zap.Logger
	now    func() time.Time
}

// Options configure a Handler.
type Options struct {
	Service *school.Service
	Signer  *auth.Signer
	Staff   auth.Staff
	Photos  PhotoUploader
	Checks  map[string]Checker
	Logger  *zap.Logger
}

func New(o Options) *Handler {
	h := &Handler{
		svc:    o.Service,
		signer: o.Signer,
		staff:  o.Staff,
		photos: o.Photos,
		checks: o.Checks,
		log:    o.Logger,
		now:    time.Now,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok"}
	deps := gin.H{"store": true}
	if err := h.svc.Ping(ctx); err != nil {
		deps["store"] = false
		status = http.StatusServiceUnavailable
	}
	for name, check := range h.checks {
		ok := check(ctx) == nil
		deps[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	body["dependencies"] = deps
	c.JSON(status, body)
}

// ---------- Errors ----------

// fail writes the response for err. Unexpected errors are logged and hidden
// behind a generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *model.ValidationError
	var fields validator.ValidationErrors
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &fields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": bindingFields(fields)})
	case errors.Is(err, auth.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		h.log.Error("request failed",
			zap.String("request_id", httpmiddleware.RequestIDFrom(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bind decodes the JSON body into req. It writes the error response and
// returns false when the body is malformed or fails validation.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			h.fail(c, err)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return false
	}
	return true
}

// intParam parses a positive integer path parameter.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return v, true
}

// intQuery parses an optional positive integer query parameter. Absent
// values are 0.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return v, true
}

// monthQuery parses ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) monthQuery(c *gin.Context) (model.Date, bool) {
	raw := c.Query("month")
	if raw == "" {
		return model.DateOf(h.now()).MonthStart(), true
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return model.Date{}, false
	}
	return model.DateOf(t), true
}
