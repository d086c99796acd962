package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/notes-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records latency and count per route template, so /api/notes/:id is
// one series whatever the note id. CORS preflights are not counted.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := routeLabel(c)
		method := c.Request.Method

		metrics.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
}

// routeLabel keeps unmatched paths out of the label set.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
