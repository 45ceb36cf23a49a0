package platform

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/api"
	"carbon-market/credit-exchange/exchange-backend/internal/auth"
)

// Handler handles HTTP requests for platform administration.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new platform handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers platform routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/platform")
	{
		group.GET("/stats", h.stats)
		group.POST("/trading/toggle", h.toggleTrading)
		group.POST("/fees/withdraw", h.withdrawFees)
	}
}

type withdrawRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

// stats handles GET /api/v1/platform/stats
func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

// toggleTrading handles POST /api/v1/platform/trading/toggle
func (h *Handler) toggleTrading(c *gin.Context) {
	enabled, err := h.service.ToggleTrading(auth.CallerID(c))
	if err != nil {
		api.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trading_enabled": enabled})
}

// withdrawFees handles POST /api/v1/platform/fees/withdraw
func (h *Handler) withdrawFees(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.WithdrawFees(auth.CallerID(c), req.Amount); err != nil {
		h.logger.Warn("Fee withdrawal rejected", zap.Error(err))
		api.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": req.Amount})
}
