package middleware

import "github.com/gin-gonic/gin"

// Security sets common HTTP security headers on every response.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		// Notes are private to their owner.
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
