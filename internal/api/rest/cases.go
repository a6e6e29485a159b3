package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/service/cases"
)

// ListCases returns cases, optionally filtered by status.
// GET /api/v1/cases?status=open.
func (h *Handler) ListCases(c *gin.Context) {
	status := models.CaseStatus(c.Query("status"))

	list, err := h.svc.Cases.List(c.Request.Context(), actor(c), status)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": list, "total": len(list)})
}

// CreateCase opens a case against an existing player.
// POST /api/v1/cases.
func (h *Handler) CreateCase(c *gin.Context) {
	var in cases.CreateInput
	if err := h.bind(c, &in); err != nil {
		h.errorResponse(c, err)
		return
	}

	created, err := h.svc.Cases.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"case": created})
}

// GetCase returns one case.
// GET /api/v1/cases/:id.
func (h *Handler) GetCase(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	found, err := h.svc.Cases.GetByID(c.Request.Context(), actor(c), id)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": found})
}

// GetCaseByNumber returns the case with a case number.
// GET /api/v1/case-numbers/:caseNumber.
func (h *Handler) GetCaseByNumber(c *gin.Context) {
	found, err := h.svc.Cases.GetByCaseNumber(c.Request.Context(), actor(c), c.Param("caseNumber"))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": found})
}

// SearchCases matches cases by number, parties or crime type.
// GET /api/v1/search/cases?q=term.
func (h *Handler) SearchCases(c *gin.Context) {
	query := c.Query("q")

	list, err := h.svc.Cases.Search(c.Request.Context(), actor(c), query)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": list, "total": len(list), "query": query})
}

type updateStatusRequest struct {
	Status models.CaseStatus `json:"status"`
}

// UpdateCaseStatus moves a case between non-terminal statuses.
// PUT /api/v1/cases/:id/status.
func (h *Handler) UpdateCaseStatus(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var req updateStatusRequest
	if err := h.bind(c, &req); err != nil {
		h.errorResponse(c, err)
		return
	}

	updated, err := h.svc.Cases.UpdateStatus(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": updated})
}

// FinalizeCase closes a case with a verdict.
// POST /api/v1/cases/:id/finalize.
func (h *Handler) FinalizeCase(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var in cases.FinalizeInput
	if err := h.bind(c, &in); err != nil {
		h.errorResponse(c, err)
		return
	}

	closed, err := h.svc.Cases.Finalize(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": closed})
}
