package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/cylinder/internal/service"
)

// ReportHandler serves reporting endpoints
type ReportHandler struct {
	reports service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/reports-cylinders", h.cylinderReport)
}

func (h *ReportHandler) cylinderReport(c *gin.Context) {
	period := c.DefaultQuery("period", service.PeriodDay)

	report, err := h.reports.CylinderReport(c.Request.Context(), period)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
