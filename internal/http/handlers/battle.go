package handlers

import (
	"net/http"

	"byte_battle/internal/battle"

	"github.com/gin-gonic/gin"
)

// GetBattle returns the public summary of a room for the join screen.
func (h *Handler) GetBattle(c *gin.Context) {
	code := battle.NormalizeCode(c.Param("code"))
	sum, ok := h.Rooms.Summary(c.Request.Context(), code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found", "code": battle.CodeRoomNotFound})
		return
	}
	c.JSON(http.StatusOK, sum)
}
