package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey gin.Context 中保存请求 ID 的 key
	RequestIDKey = "request_id"

	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

// RequestIDMiddleware 沿用调用方传入的 X-Request-ID，缺失或过长时生成 UUID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// GetRequestID 从上下文中获取请求 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
