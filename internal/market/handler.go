package market

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/api"
	"carbon-market/credit-exchange/exchange-backend/internal/auth"
)

// Handler handles HTTP requests for the order book.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new market handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers trading routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/orders")
	{
		group.POST("", h.createOrder)
		group.GET("/:id", h.getOrder)
		group.POST("/:id/buy", h.buy)
		group.POST("/:id/cancel", h.cancel)
	}
}

type createOrderRequest struct {
	ProjectID uint64 `json:"project_id" binding:"required"`
	Amount    uint64 `json:"amount"`
	Price     uint64 `json:"price"`
	Duration  uint64 `json:"duration"`
}

type buyRequest struct {
	Amount uint64 `json:"amount"`
}

// createOrder handles POST /api/v1/orders
func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.CreateSellOrder(auth.CallerID(c), req.ProjectID, req.Amount, req.Price, req.Duration)
	if err != nil {
		h.logger.Warn("Order creation rejected", zap.Error(err))
		api.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order_id": id})
}

// buy handles POST /api/v1/orders/:id/buy
func (h *Handler) buy(c *gin.Context) {
	id, err := h.orderID(c)
	if err != nil {
		return
	}
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Buy(auth.CallerID(c), id, req.Amount)
	if err != nil {
		api.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// cancel handles POST /api/v1/orders/:id/cancel
func (h *Handler) cancel(c *gin.Context) {
	id, err := h.orderID(c)
	if err != nil {
		return
	}
	returned, err := h.service.Cancel(auth.CallerID(c), id)
	if err != nil {
		api.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "returned": returned})
}

// getOrder handles GET /api/v1/orders/:id
func (h *Handler) getOrder(c *gin.Context) {
	id, err := h.orderID(c)
	if err != nil {
		return
	}
	order, ok := h.service.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) orderID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
	}
	return id, err
}
