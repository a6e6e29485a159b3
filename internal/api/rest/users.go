package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/models"
)

// ListUsers returns every user.
// GET /api/v1/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.Users.GetAll(c.Request.Context(), actor(c))
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

// UpdateUserRole assigns a role to a user.
// PUT /api/v1/users/:id/role.
func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	var req updateRoleRequest
	if err := h.bind(c, &req); err != nil {
		h.errorResponse(c, err)
		return
	}

	user, err := h.svc.Users.UpdateRole(c.Request.Context(), actor(c), id, req.Role)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
