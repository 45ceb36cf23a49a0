package retirement

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/api"
	"carbon-market/credit-exchange/exchange-backend/internal/auth"
	"carbon-market/credit-exchange/exchange-backend/pkg/pdf"
)

// Handler handles HTTP requests for credit retirement.
type Handler struct {
	service *Service
	pdf     *pdf.Generator
	logger  *zap.Logger
}

// NewHandler creates a new retirement handler.
func NewHandler(service *Service, generator *pdf.Generator, logger *zap.Logger) *Handler {
	return &Handler{service: service, pdf: generator, logger: logger}
}

// RegisterRoutes registers retirement routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/retirements")
	{
		group.POST("", h.retire)
		group.GET("/:id", h.get)
		group.GET("/:id/offset", h.offset)
		group.GET("/:id/certificate", h.certificate)
	}
}

type retireRequest struct {
	ProjectID uint64 `json:"project_id" binding:"required"`
	Amount    uint64 `json:"amount"`
	Reason    string `json:"reason"`
}

// retire handles POST /api/v1/retirements
func (h *Handler) retire(c *gin.Context) {
	var req retireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.Retire(auth.CallerID(c), req.ProjectID, req.Amount, req.Reason)
	if err != nil {
		h.logger.Warn("Retirement rejected", zap.Error(err))
		api.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"retirement_id": record.ID,
		"amount":        record.Amount,
		"certificate":   hex.EncodeToString(record.Certificate[:]),
	})
}

// get handles GET /api/v1/retirements/:id
func (h *Handler) get(c *gin.Context) {
	id, err := h.retirementID(c)
	if err != nil {
		return
	}
	record, ok := h.service.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "retirement not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          record.ID,
		"account":     record.Account,
		"project_id":  record.ProjectID,
		"amount":      record.Amount,
		"retired_at":  record.RetiredAt,
		"reason":      record.Reason,
		"certificate": hex.EncodeToString(record.Certificate[:]),
	})
}

// offset handles GET /api/v1/retirements/:id/offset
func (h *Handler) offset(c *gin.Context) {
	id, err := h.retirementID(c)
	if err != nil {
		return
	}
	amount, ok := h.service.CO2Offset(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "retirement not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"retirement_id": id, "co2_offset_tonnes": amount})
}

// certificate handles GET /api/v1/retirements/:id/certificate
func (h *Handler) certificate(c *gin.Context) {
	id, err := h.retirementID(c)
	if err != nil {
		return
	}
	data, ok := h.service.Certificate(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "retirement not found"})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="retirement-certificate-%d.pdf"`, id))
	if err := h.pdf.RenderCertificate(c.Writer, data); err != nil {
		h.logger.Error("Failed to render certificate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) retirementID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid retirement id"})
	}
	return id, err
}
