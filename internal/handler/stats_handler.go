package handler

import (
	"github.com/gin-gonic/gin"

	"invois/internal/service"
)

// StatsHandler handles superadmin telemetry endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Global handles GET /api/v1/admin/stats
// @Summary Global platform statistics
// @Description Aggregate counts and billed/collected/outstanding totals across all tenants
// @Tags admin
// @Produce json
// @Success 200 {object} Response{data=domain.Stats} "Statistics"
// @Failure 403 {object} ErrorResponseBody "Superadmin only"
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *StatsHandler) Global(c *gin.Context) {
	stats, err := h.statsService.GlobalStats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}
