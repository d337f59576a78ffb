package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/urban-dds/internal/application/analysis"
)

// RegionService is the subset of analysis.Service used for region lookups.
type RegionService interface {
	RegionSummary(ctx context.Context, address string) (*analysis.RegionSummary, error)
	RegionMetrics(ctx context.Context, code string) (*analysis.RegionMetrics, error)
}

// RegionHandler serves the region lookups.
type RegionHandler struct {
	svc RegionService
}

func NewRegionHandler(svc RegionService) *RegionHandler {
	return &RegionHandler{svc: svc}
}

// Summary handles GET /region/summary?address=.
func (h *RegionHandler) Summary(c *gin.Context) {
	summary, err := h.svc.RegionSummary(c.Request.Context(), c.Query("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Metrics handles GET /region/metrics?regionCode=.
func (h *RegionHandler) Metrics(c *gin.Context) {
	metrics, err := h.svc.RegionMetrics(c.Request.Context(), c.Query("regionCode"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

//Personal.AI order the ending
