package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/cylinder/internal/service"
)

// CylinderHandler serves cylinder lifecycle endpoints
type CylinderHandler struct {
	cylinders service.CylinderService
}

// NewCylinderHandler creates a new cylinder handler
func NewCylinderHandler(cylinders service.CylinderService) *CylinderHandler {
	return &CylinderHandler{cylinders: cylinders}
}

// RegisterRoutes registers cylinder routes
func (h *CylinderHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	cylinders := v1.Group("/cylinders")
	{
		cylinders.GET("", h.list)
		cylinders.POST("", h.create)
		cylinders.GET("/:id", h.get)
		cylinders.PUT("/:id", h.update)
		cylinders.DELETE("/:id", h.delete)
		cylinders.POST("/:id/status", h.transition)
		cylinders.GET("/:id/history", h.history)
	}
}

func (h *CylinderHandler) list(c *gin.Context) {
	req := service.ListCylindersRequest{
		Status: c.Query("status"),
		All:    c.Query("all") == "true",
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeBindError(c, err)
			return
		}
		req.Date = &date
	}

	cylinders, err := h.cylinders.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cylinders": cylinders})
}

func (h *CylinderHandler) create(c *gin.Context) {
	var req service.CreateCylinderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cylinder, err := h.cylinders.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cylinder)
}

func (h *CylinderHandler) get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	cylinder, err := h.cylinders.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cylinder)
}

func (h *CylinderHandler) update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	var req service.UpdateCylinderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cylinder, err := h.cylinders.UpdateMetadata(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cylinder)
}

func (h *CylinderHandler) transition(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cylinder, err := h.cylinders.TransitionStatus(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cylinder)
}

func (h *CylinderHandler) delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.cylinders.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CylinderHandler) history(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	entries, err := h.cylinders.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// parseID extracts the numeric id path parameter.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
