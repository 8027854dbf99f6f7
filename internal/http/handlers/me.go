package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"byte_battle/internal/http/middleware"
	"byte_battle/internal/repository"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if h.Users == nil {
		c.JSON(http.StatusOK, gin.H{"id": userID, "name": displayName(c, userID)})
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"name":       user.DisplayName(),
		"username":   user.Username,
		"first_name": user.FirstName,
		"xp":         user.XP,
		"created_at": user.CreatedAt,
	})
}

// MyXP lists the caller's recent XP ledger rows.
func (h *Handler) MyXP(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if h.XP == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "xp ledger not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := h.XP.GetByUserID(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": rows})
}

func displayName(c *gin.Context, userID int64) string {
	if name := middleware.DisplayName(c); name != "" {
		return name
	}
	return "Player " + strconv.FormatInt(userID, 10)
}
