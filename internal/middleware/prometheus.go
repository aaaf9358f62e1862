package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/metrics"
)

// PrometheusMiddleware 记录 HTTP 请求数量与耗时
// /metrics 抓取本身不计入；未匹配的路由统一记为 unmatched
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" {
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}

		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start).Seconds())
	}
}
