package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes token issuance for the standalone server.
type Handler struct {
	secret string
	ttl    time.Duration
}

// NewHandler creates a new auth handler.
func NewHandler(secret string, ttl time.Duration) *Handler {
	return &Handler{secret: secret, ttl: ttl}
}

// RegisterRoutes registers auth routes. These stay outside the authenticated
// group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auth")
	{
		group.POST("/token", h.issueToken)
	}
}

type tokenRequest struct {
	Account string `json:"account" binding:"required"`
}

// issueToken handles POST /api/v1/auth/token
func (h *Handler) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := uuid.Parse(req.Account)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account must be a UUID"})
		return
	}

	token, err := IssueToken(account, h.secret, h.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int(h.ttl.Seconds())})
}
