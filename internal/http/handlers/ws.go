package handlers

import (
	"context"
	"net/http"
	"time"

	"byte_battle/internal/http/middleware"
	"byte_battle/internal/logger"
	"byte_battle/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades an authenticated request and hands the socket to the hub.
// Must run behind middleware.WSAuth.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}

	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		name := h.lookupName(c, userID)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("ws upgrade failed", "user", userID, "error", err)
			return
		}

		client := ws.NewClient(userID, name, conn, hub)
		go client.Run()
	}
}

// lookupName prefers the token's name claim, then the users table.
func (h *Handler) lookupName(c *gin.Context, userID int64) string {
	if name := middleware.DisplayName(c); name != "" || h.Users == nil {
		return displayName(c, userID)
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if u, err := h.Users.GetByID(ctx, userID); err == nil {
		return u.DisplayName()
	}
	return displayName(c, userID)
}
