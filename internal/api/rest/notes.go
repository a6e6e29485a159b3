package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type noteRequest struct {
	Content string `json:"content"`
}

// ListNotes returns the notes on a case.
// GET /api/v1/cases/:id/notes.
func (h *Handler) ListNotes(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	list, err := h.svc.Notes.ListByCase(c.Request.Context(), actor(c), caseID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": list, "total": len(list)})
}

// AddNote attaches a note to a case.
// POST /api/v1/cases/:id/notes.
func (h *Handler) AddNote(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var req noteRequest
	if err := h.bind(c, &req); err != nil {
		h.errorResponse(c, err)
		return
	}

	note, err := h.svc.Notes.Add(c.Request.Context(), actor(c), caseID, req.Content)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// UpdateNote replaces the content of a note.
// PUT /api/v1/notes/:id.
func (h *Handler) UpdateNote(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var req noteRequest
	if err := h.bind(c, &req); err != nil {
		h.errorResponse(c, err)
		return
	}

	note, err := h.svc.Notes.Update(c.Request.Context(), actor(c), id, req.Content)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

// DeleteNote removes a note.
// DELETE /api/v1/notes/:id.
func (h *Handler) DeleteNote(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	if err := h.svc.Notes.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
