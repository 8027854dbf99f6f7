package middleware

import (
	"net/http"
	"strings"

	"byte_battle/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxName   = "display_name"
)

// JWT requires a bearer token and stores the caller's identity in the context.
func JWT() gin.HandlerFunc {
	return authenticate(false)
}

// WSAuth is JWT for websocket upgrades, where browsers can only pass the
// token as ?token=.
func WSAuth() gin.HandlerFunc {
	return authenticate(true)
}

func authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		id, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserID, id.UserID)
		c.Set(ctxName, id.Name)
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// UserID returns the id stored by JWT or WSAuth.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// DisplayName returns the name claim stored by JWT or WSAuth, if any.
func DisplayName(c *gin.Context) string {
	return c.GetString(ctxName)
}
