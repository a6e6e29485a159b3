package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CaseStats returns case counts by status.
// GET /api/v1/statistics/cases.
func (h *Handler) CaseStats(c *gin.Context) {
	stats, err := h.svc.Statistics.CaseStats(c.Request.Context(), actor(c))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "generated_at": time.Now().UTC()})
}

// RequestStats returns case request counts by status.
// GET /api/v1/statistics/requests.
func (h *Handler) RequestStats(c *gin.Context) {
	stats, err := h.svc.Statistics.RequestStats(c.Request.Context(), actor(c))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "generated_at": time.Now().UTC()})
}
