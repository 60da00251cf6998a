package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/cylinder/internal/service"
)

// GasTypeHandler serves gas type catalog endpoints
type GasTypeHandler struct {
	gasTypes service.GasTypeService
}

// NewGasTypeHandler creates a new gas type handler
func NewGasTypeHandler(gasTypes service.GasTypeService) *GasTypeHandler {
	return &GasTypeHandler{gasTypes: gasTypes}
}

// RegisterRoutes registers gas type routes
func (h *GasTypeHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	gasTypes := v1.Group("/gas-types")
	{
		gasTypes.POST("", h.create)
		gasTypes.GET("", h.list)
		gasTypes.GET("/:id", h.get)
		gasTypes.PUT("/:id", h.update)
		gasTypes.DELETE("/:id", h.delete)
	}
}

func (h *GasTypeHandler) create(c *gin.Context) {
	var req service.GasTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	gasType, err := h.gasTypes.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gasType)
}

func (h *GasTypeHandler) list(c *gin.Context) {
	gasTypes, err := h.gasTypes.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gas_types": gasTypes})
}

func (h *GasTypeHandler) get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	gasType, err := h.gasTypes.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gasType)
}

func (h *GasTypeHandler) update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	var req service.GasTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	gasType, err := h.gasTypes.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gasType)
}

func (h *GasTypeHandler) delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.gasTypes.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "gas type deleted"})
}
