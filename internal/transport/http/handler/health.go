package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health answers GET /api/health for the browser client.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "API is running"})
}
