package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/service/players"
)

// UpsertPlayer creates a player or refreshes its username.
// POST /api/v1/players.
func (h *Handler) UpsertPlayer(c *gin.Context) {
	var in players.UpsertInput
	if err := h.bind(c, &in); err != nil {
		h.errorResponse(c, err)
		return
	}

	player, err := h.svc.Players.Upsert(c.Request.Context(), actor(c), in)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

// GetPlayer returns one player.
// GET /api/v1/players/:id.
func (h *Handler) GetPlayer(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	player, err := h.svc.Players.GetByID(c.Request.Context(), actor(c), id)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

// GetPlayerByRobloxID returns the player with a Roblox user id.
// GET /api/v1/roblox-players/:robloxId.
func (h *Handler) GetPlayerByRobloxID(c *gin.Context) {
	raw := c.Param("robloxId")
	robloxID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || robloxID <= 0 {
		h.errorResponse(c, apperr.Invalid("invalid roblox id: %s", raw))
		return
	}

	player, err := h.svc.Players.GetByRobloxID(c.Request.Context(), actor(c), robloxID)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

// GetPlayerStats returns a player's record and conviction rate.
// GET /api/v1/players/:id/stats.
func (h *Handler) GetPlayerStats(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	stats, err := h.svc.Players.Stats(c.Request.Context(), actor(c), id)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListPlayerCases returns the cases against a player.
// GET /api/v1/players/:id/cases.
func (h *Handler) ListPlayerCases(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	list, err := h.svc.Cases.ListByPlayer(c.Request.Context(), actor(c), id)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": list, "total": len(list)})
}

// TopOffenders returns the players with the most cases.
// GET /api/v1/top-offenders?limit=10.
func (h *Handler) TopOffenders(c *gin.Context) {
	limit, err := h.parseIntQuery(c, "limit", 0)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	list, err := h.svc.Players.TopOffenders(c.Request.Context(), actor(c), limit)
	if err != nil {
		h.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": list, "total": len(list)})
}
