package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/cylinder/internal/service"
)

// InvoiceHandler serves invoice endpoints
type InvoiceHandler struct {
	invoices service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	invoices := v1.Group("/invoices")
	{
		invoices.POST("/create", h.create)
		invoices.GET("", h.list)
		invoices.GET("/:id", h.get)
		invoices.PATCH("/:id", h.updateStatus)
	}
}

type createInvoiceRequest struct {
	SupplyID uint `json:"supply_id" binding:"required"`
}

type updateInvoiceRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *InvoiceHandler) create(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	invoice, err := h.invoices.CreateForSupply(c.Request.Context(), req.SupplyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) list(c *gin.Context) {
	invoices, err := h.invoices.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *InvoiceHandler) get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	invoice, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) updateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeBindError(c, err)
		return
	}

	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	invoice, err := h.invoices.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
