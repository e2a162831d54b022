package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom/internal/auth"
)

// IssueToken exchanges staff credentials for an access/refresh token pair.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.staff.Authenticate(req.Username, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	tokens, err := h.signer.Issue(req.Username, auth.RoleStaff)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokens)
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if !h.bind(c, &req) {
		return
	}
	tokens, err := h.signer.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}
