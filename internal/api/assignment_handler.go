package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/cylinder/internal/service"
)

// AssignmentHandler serves vehicle dispatch endpoints
type AssignmentHandler struct {
	assignments service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignments service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// RegisterRoutes registers assignment routes under /cylinders
func (h *AssignmentHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	cylinders := v1.Group("/cylinders")
	{
		cylinders.POST("/assign", h.assign)
		cylinders.GET("/assignments", h.list)
		cylinders.GET("/assignments/:id", h.get)
		cylinders.POST("/assignments/mark-delivered", h.markDelivered)
		cylinders.POST("/assignments/mark-returned", h.markReturned)
	}
}

func (h *AssignmentHandler) assign(c *gin.Context) {
	var req service.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	assignment, err := h.assignments.Assign(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (h *AssignmentHandler) list(c *gin.Context) {
	assignments, err := h.assignments.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *AssignmentHandler) get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	assignment, err := h.assignments.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) markDelivered(c *gin.Context) {
	var req service.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.assignments.MarkDelivered(c.Request.Context(), &req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AssignmentHandler) markReturned(c *gin.Context) {
	var req service.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := h.assignments.MarkReturned(c.Request.Context(), &req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
