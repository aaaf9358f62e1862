package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/middleware"
	"github.com/azhengyongqin/vision-taskhub/internal/server/dto"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

const (
	msgQueueFull    = "Queue is full, try again later."
	msgTaskNotFound = "Task ID not found"
	msgQueueClosed  = "服务正在关闭，暂不接收新任务"
)

// statusForError 把任务层错误映射为 HTTP 状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, task.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrCapacityExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, task.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusForError(err)
	msg := err.Error()
	switch status {
	case http.StatusTooManyRequests:
		msg = msgQueueFull
	case http.StatusNotFound:
		msg = msgTaskNotFound
	case http.StatusServiceUnavailable:
		msg = msgQueueClosed
	}
	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponse{Error: msg})
}

// writeBindError 请求绑定失败：超过请求体上限为 413，其余为 400
func writeBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: middleware.PayloadTooLargeMessage(tooLarge.Limit)})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}
