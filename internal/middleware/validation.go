package middleware

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/logger"
)

// TaskIDRegex TaskID 正则（字母数字连字符，1-128字符）
var TaskIDRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{1,128}$`)

// PayloadTooLargeMessage 超过请求体上限时返回的错误信息
func PayloadTooLargeMessage(maxSize int64) string {
	return fmt.Sprintf("请求体过大，最大允许 %s", humanBytes(maxSize))
}

// PayloadSizeLimit Payload 大小限制中间件
// 需注册在任何读取请求体的中间件之前
func PayloadSizeLimit(maxSize int64) gin.HandlerFunc {
	msg := PayloadTooLargeMessage(maxSize)
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			logger.L.Warn().
				Str("request_id", GetRequestID(c)).
				Str("path", c.Request.URL.Path).
				Int64("content_length", c.Request.ContentLength).
				Msg("请求体超过上限")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": msg})
			return
		}
		// 未声明 Content-Length（chunked）时由 MaxBytesReader 兜底
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}

func humanBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	if n >= 1024 && n%1024 == 0 {
		return fmt.Sprintf("%dKB", n/1024)
	}
	return fmt.Sprintf("%dB", n)
}

// ValidateTaskID 验证 Task ID
func ValidateTaskID(taskID string) bool {
	return TaskIDRegex.MatchString(taskID)
}

// ValidateTaskIDParam Gin 中间件：验证路径参数中的 task_id
// 格式不合法的 ID 不可能存在，直接按未找到处理
func ValidateTaskIDParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("task_id")
		if taskID == "" || !ValidateTaskID(taskID) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "Task ID not found",
			})
			return
		}

		c.Next()
	}
}

// CORSMiddleware CORS 中间件（前端标注页面跨域访问）
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
