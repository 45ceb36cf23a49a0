package verifiers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/api"
	"carbon-market/credit-exchange/exchange-backend/internal/auth"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Handler handles HTTP requests for the verifier registry.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new verifiers handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers verifier routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/verifiers")
	{
		group.POST("", h.register)
		group.GET("/:account", h.get)
	}
}

type registerRequest struct {
	Organization string `json:"organization" binding:"required"`
	Standard     string `json:"standard" binding:"required"`
	Stake        uint64 `json:"stake"`
}

// register handles POST /api/v1/verifiers
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verifier, err := h.service.Register(auth.CallerID(c), req.Organization, ledger.Standard(req.Standard), req.Stake)
	if err != nil {
		h.logger.Warn("Verifier registration rejected", zap.Error(err))
		api.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, verifier)
}

// get handles GET /api/v1/verifiers/:account
func (h *Handler) get(c *gin.Context) {
	account, err := uuid.Parse(c.Param("account"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	verifier, ok := h.service.Get(account)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "verifier not found"})
		return
	}
	c.JSON(http.StatusOK, verifier)
}
