package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/service/evidence"
)

// ListEvidence returns the evidence attached to a case.
// GET /api/v1/cases/:id/evidence.
func (h *Handler) ListEvidence(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	list, err := h.svc.Evidence.ListByCase(c.Request.Context(), actor(c), caseID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evidence": list, "total": len(list)})
}

// AddEvidence attaches an evidence reference to a case.
// POST /api/v1/cases/:id/evidence.
func (h *Handler) AddEvidence(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var in evidence.AddInput
	if err := h.bind(c, &in); err != nil {
		h.errorResponse(c, err)
		return
	}

	e, err := h.svc.Evidence.Add(c.Request.Context(), actor(c), caseID, in)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"evidence": e})
}

// UploadEvidence stores a multipart file and attaches it to a case.
// POST /api/v1/cases/:id/evidence/upload (form fields: file, type, description).
func (h *Handler) UploadEvidence(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	header, err := c.FormFile("file")
	if err != nil {
		h.errorResponse(c, apperr.Invalid("file is required: %v", err))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.errorResponse(c, apperr.Invalid("failed to read uploaded file: %v", err))
		return
	}
	defer file.Close()

	var description *string
	if d := strings.TrimSpace(c.PostForm("description")); d != "" {
		description = &d
	}

	e, err := h.svc.Evidence.Upload(c.Request.Context(), actor(c), caseID, evidence.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, models.EvidenceType(c.PostForm("type")), description)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"evidence": e})
}

// DeleteEvidence removes evidence.
// DELETE /api/v1/evidence/:id.
func (h *Handler) DeleteEvidence(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	if err := h.svc.Evidence.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
