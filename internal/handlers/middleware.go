package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxUserID = "userId"

// sessionToken returns the token from the Authorization header, falling
// back to the session cookie. ok is false for a malformed header.
func (h *Handler) sessionToken(c *gin.Context) (token string, ok bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := c.Cookie(h.cookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", true
}

func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, ok := h.sessionToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header format"})
		return
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
		return
	}
	c.Set(ctxUserID, userID)
	c.Next()
}

// deviceKeyMiddleware checks X-Device-Key when a key is configured.
func (h *Handler) deviceKeyMiddleware(c *gin.Context) {
	if h.deviceKey == "" {
		c.Next()
		return
	}
	got := c.GetHeader("X-Device-Key")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.deviceKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid device key"})
		return
	}
	c.Next()
}
