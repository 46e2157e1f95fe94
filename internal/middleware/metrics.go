package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicore-api/internal/metrics"
)

// Instrument records request counts and latency by route template, so
// /appointment/:id is one series regardless of the id.
func Instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
