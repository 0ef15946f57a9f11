package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mesem-yoklama/pkg/metrics"
)

// Metrics HTTP 请求计数与耗时
// path 取路由模板（如 /api/v1/students/:id），未匹配路由统一记为 unmatched
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
