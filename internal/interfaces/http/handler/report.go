package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/rst/farmcontrol/internal/application/report"
)

// ReportHandler serves the dashboard
type ReportHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(dashboardService *reportapp.DashboardService) *ReportHandler {
	return &ReportHandler{dashboardService: dashboardService}
}

// Dashboard godoc
// @Summary      Current month dashboard
// @Description  Cost and sales summaries of the current month with the resulting margin
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Dashboard}
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
