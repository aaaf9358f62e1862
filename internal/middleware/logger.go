package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/azhengyongqin/vision-taskhub/internal/logger"
)

const (
	// MaxBodyLogSize 最大记录的请求/响应体大小（字节）
	MaxBodyLogSize = 4096
)

// responseWriter 包装 gin.ResponseWriter，统计响应大小并缓存前 MaxBodyLogSize 字节
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
	size int
}

func (w *responseWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.size += size
	if w.body.Len()+len(b) <= MaxBodyLogSize {
		w.body.Write(b)
	}
	return size, err
}

// quietPaths 成功时降为 Debug 级别的路由（客户端高频轮询）
var quietPaths = map[string]bool{
	"/task_status/:task_id":        true,
	"/api/v1/task_status/:task_id": true,
	"/healthz":                     true,
	"/readyz":                      true,
	"/metrics":                     true,
}

// LoggingMiddleware 记录请求日志
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := GetRequestID(c)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		// 只读取日志所需的前 MaxBodyLogSize+1 字节，其余部分原样留给后续 handler
		var requestBody string
		if c.Request.Body != nil && c.Request.Method == http.MethodPost {
			requestBody = peekBody(c.Request)
		}

		blw := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBufferString(""),
		}
		c.Writer = blw

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		var logEvent *zerolog.Event
		switch {
		case status >= 500:
			logEvent = logger.L.Error()
		case status >= 400:
			logEvent = logger.L.Warn()
		case quietPaths[path]:
			logEvent = logger.L.Debug()
		default:
			logEvent = logger.L.Info()
		}

		if requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		logEvent = logEvent.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration(ms)", duration).
			Int("response_size", blw.size).
			Str("client_ip", c.ClientIP())

		if c.Request.URL.RawQuery != "" {
			logEvent = logEvent.Str("query", c.Request.URL.RawQuery)
		}
		if requestBody != "" {
			logEvent = logEvent.Str("request_body", requestBody)
		}
		if len(c.Errors) > 0 {
			logEvent = logEvent.Str("errors", c.Errors.String())
		}

		// 4xx/5xx 记录 JSON 错误体，图片等二进制响应不记录
		if status >= 400 && blw.body.Len() > 0 && strings.HasPrefix(blw.Header().Get("Content-Type"), "application/json") {
			logEvent = logEvent.Str("response_body", blw.body.String())
		}

		logEvent.Msg("HTTP 请求")
	}
}

type peekedBody struct {
	io.Reader
	io.Closer
}

// peekBody 读取请求体开头用于日志，并把已读部分拼回 Body
func peekBody(req *http.Request) string {
	head, err := io.ReadAll(io.LimitReader(req.Body, MaxBodyLogSize+1))
	req.Body = peekedBody{
		Reader: io.MultiReader(bytes.NewReader(head), req.Body),
		Closer: req.Body,
	}
	switch {
	case err != nil:
		return ""
	case len(head) > MaxBodyLogSize:
		if req.ContentLength > 0 {
			return fmt.Sprintf("(%d bytes omitted)", req.ContentLength)
		}
		return fmt.Sprintf("(over %d bytes omitted)", MaxBodyLogSize)
	default:
		return string(head)
	}
}
