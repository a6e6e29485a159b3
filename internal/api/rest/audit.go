package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs returns a page of the audit trail.
// GET /api/v1/audit-logs?limit=100&offset=0.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	limit, err := h.parseIntQuery(c, "limit", 0)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	offset, err := h.parseIntQuery(c, "offset", 0)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	entries, err := h.svc.Audit.List(c.Request.Context(), actor(c), limit, offset)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries), "offset": offset})
}

// ListEntityAuditLogs returns the history of one entity.
// GET /api/v1/audit-logs/:entityType/:entityId.
func (h *Handler) ListEntityAuditLogs(c *gin.Context) {
	entityID, err := h.parseID(c, "entityId")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	entityType := c.Param("entityType")

	entries, err := h.svc.Audit.ByEntity(c.Request.Context(), actor(c), entityType, entityID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
}
