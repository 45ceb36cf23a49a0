package projects

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/api"
	"carbon-market/credit-exchange/exchange-backend/internal/auth"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Handler handles HTTP requests for the project registry.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new projects handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers project routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/projects")
	{
		group.POST("", h.register)
		group.GET("/:id", h.get)
		group.POST("/:id/verify", h.verify)
		group.POST("/:id/issue", h.issue)
		group.GET("/:id/balances/:account", h.balance)
	}
}

type registerRequest struct {
	Name        string `json:"name" binding:"required"`
	Location    string `json:"location"`
	Methodology string `json:"methodology"`
	Type        string `json:"type" binding:"required"`
	Standard    string `json:"standard" binding:"required"`
	VintageYear int    `json:"vintage_year"`
	Stake       uint64 `json:"stake"`
}

type issueRequest struct {
	Amount uint64 `json:"amount"`
	Price  uint64 `json:"price"`
}

// register handles POST /api/v1/projects
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.Register(auth.CallerID(c), RegisterRequest{
		Name:        req.Name,
		Location:    req.Location,
		Methodology: req.Methodology,
		Type:        ledger.ProjectType(req.Type),
		Standard:    ledger.Standard(req.Standard),
		VintageYear: req.VintageYear,
		Stake:       req.Stake,
	})
	if err != nil {
		h.logger.Warn("Project registration rejected", zap.Error(err))
		api.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project_id": id})
}

// verify handles POST /api/v1/projects/:id/verify
func (h *Handler) verify(c *gin.Context) {
	id, err := h.projectID(c)
	if err != nil {
		return
	}
	if err := h.service.Verify(auth.CallerID(c), id); err != nil {
		api.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "verified": true})
}

// issue handles POST /api/v1/projects/:id/issue
func (h *Handler) issue(c *gin.Context) {
	id, err := h.projectID(c)
	if err != nil {
		return
	}
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Issue(auth.CallerID(c), id, req.Amount, req.Price); err != nil {
		api.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "issued": req.Amount})
}

// get handles GET /api/v1/projects/:id
func (h *Handler) get(c *gin.Context) {
	id, err := h.projectID(c)
	if err != nil {
		return
	}
	project, ok := h.service.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// balance handles GET /api/v1/projects/:id/balances/:account
func (h *Handler) balance(c *gin.Context) {
	id, err := h.projectID(c)
	if err != nil {
		return
	}
	account, parseErr := uuid.Parse(c.Param("account"))
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project_id": id,
		"account":    account,
		"balance":    h.service.Balance(account, id),
	})
}

func (h *Handler) projectID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
	}
	return id, err
}
