package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders adds response headers for a JSON-only API
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		// Replies can contain user screenshots
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
