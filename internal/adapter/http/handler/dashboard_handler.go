package handler

import (
	"smm-admin-gateway/internal/adapter/http/dto"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles dashboard reporting endpoints.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// GetStats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.reportingSvc.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsFromPorts(stats))
}
