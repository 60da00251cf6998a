package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/cylinder/internal/service"
)

// SupplyHandler serves hospital supply endpoints
type SupplyHandler struct {
	supplies service.SupplyService
}

// NewSupplyHandler creates a new supply handler
func NewSupplyHandler(supplies service.SupplyService) *SupplyHandler {
	return &SupplyHandler{supplies: supplies}
}

// RegisterRoutes registers supply routes
func (h *SupplyHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	supplies := v1.Group("/supplies")
	{
		supplies.POST("", h.create)
		supplies.GET("", h.list)
		supplies.GET("/:id", h.get)
	}
}

func (h *SupplyHandler) create(c *gin.Context) {
	var req service.CreateSupplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	supply, err := h.supplies.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supply)
}

func (h *SupplyHandler) list(c *gin.Context) {
	// Default window is the last 30 days, overridable with from/to.
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			writeBindError(c, err)
			return
		}
		start = from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			writeBindError(c, err)
			return
		}
		end = to.AddDate(0, 0, 1)
	}

	supplies, err := h.supplies.ListBetween(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplies": supplies})
}

func (h *SupplyHandler) get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	supply, err := h.supplies.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, supply)
}
