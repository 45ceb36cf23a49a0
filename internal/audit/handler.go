package audit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the transaction log.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new audit handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers audit routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	txs := router.Group("/transactions")
	{
		txs.GET("", h.listTransactions)
		txs.GET("/export", h.exportTransactions)
		txs.GET("/:id", h.getTransaction)
	}
}

// getTransaction handles GET /api/v1/transactions/:id
func (h *Handler) getTransaction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	tx, ok := h.service.GetTransaction(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// listTransactions handles GET /api/v1/transactions
func (h *Handler) listTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"transactions": h.service.ListTransactions()})
}

// exportTransactions handles GET /api/v1/transactions/export
func (h *Handler) exportTransactions(c *gin.Context) {
	txs := h.service.ListTransactions()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%d.xlsx"`, len(txs)))
	if err := WriteXLSX(c.Writer, txs); err != nil {
		h.logger.Error("Failed to export transactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
