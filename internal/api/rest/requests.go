package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/service/requests"
)

type reviewRequest struct {
	Notes *string `json:"review_notes"`
}

// ListCaseRequests returns the intake queue, optionally filtered by status.
// GET /api/v1/case-requests?status=pending.
func (h *Handler) ListCaseRequests(c *gin.Context) {
	status := models.CaseRequestStatus(c.Query("status"))

	list, err := h.svc.Requests.List(c.Request.Context(), actor(c), status)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list, "total": len(list)})
}

// ListMyCaseRequests returns the caller's own submissions.
// GET /api/v1/me/case-requests.
func (h *Handler) ListMyCaseRequests(c *gin.Context) {
	list, err := h.svc.Requests.ListMine(c.Request.Context(), actor(c))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list, "total": len(list)})
}

// SubmitCaseRequest files a new case request.
// POST /api/v1/case-requests.
func (h *Handler) SubmitCaseRequest(c *gin.Context) {
	var in requests.SubmitInput
	if err := h.bind(c, &in); err != nil {
		h.errorResponse(c, err)
		return
	}

	req, err := h.svc.Requests.Submit(c.Request.Context(), actor(c), in)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// GetCaseRequest returns one case request.
// GET /api/v1/case-requests/:id.
func (h *Handler) GetCaseRequest(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	req, err := h.svc.Requests.GetByID(c.Request.Context(), actor(c), id)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ApproveCaseRequest promotes a pending request into a case.
// POST /api/v1/case-requests/:id/approve.
func (h *Handler) ApproveCaseRequest(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var req reviewRequest
	if c.Request.ContentLength != 0 {
		if err := h.bind(c, &req); err != nil {
			h.errorResponse(c, err)
			return
		}
	}

	result, err := h.svc.Requests.Approve(c.Request.Context(), actor(c), id, req.Notes)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request":  result.Request,
		"case":     result.Case,
		"evidence": result.Evidence,
	})
}

// RejectCaseRequest closes a pending request with a reason.
// POST /api/v1/case-requests/:id/reject.
func (h *Handler) RejectCaseRequest(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var req reviewRequest
	if err := h.bind(c, &req); err != nil {
		h.errorResponse(c, err)
		return
	}

	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}
	rejected, err := h.svc.Requests.Reject(c.Request.Context(), actor(c), id, notes)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": rejected})
}
