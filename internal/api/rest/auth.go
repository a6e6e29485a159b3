package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
)

// Me returns the caller.
// GET /api/v1/auth/me.
func (h *Handler) Me(c *gin.Context) {
	a := actor(c)
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":   a.ID,
			"name": a.Name,
			"role": a.Role,
		},
	})
}

// Logout revokes the current session token and clears the session cookie.
// POST /api/v1/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := c.Get(claimsKey); ok {
		if err := h.sessions.Revoke(c.Request.Context(), claims.(*auth.Claims)); err != nil {
			h.errorResponse(c, apperr.Unavailable(err, "failed to revoke session"))
			return
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", c.Request.TLS != nil, true)

	a := actor(c)
	h.log.Info().Uint("user_id", a.ID).Msg("User logged out")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
