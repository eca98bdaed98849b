package middleware

import (
	"github.com/gin-gonic/gin"
)

// TokenFromQuery copies the access token from the given query parameter into the
// Authorization header when the header is absent. Browsers cannot set headers on a
// WebSocket handshake, so streaming endpoints accept ?token= instead.
func TokenFromQuery(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query(param); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}
