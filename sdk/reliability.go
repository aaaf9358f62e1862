package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTaskFailed 任务以 error 状态结束
var ErrTaskFailed = errors.New("task failed")

// SubmitRetryConfig 队列满时的重试配置
type SubmitRetryConfig struct {
	MaxRetries     int           // 最大重试次数，默认 5
	InitialBackoff time.Duration // 初始退避时间，默认 2秒
	MaxBackoff     time.Duration // 最大退避时间，默认 30秒
	BackoffFactor  float64       // 退避因子，默认 2.0（指数退避）

	// OnRetry 每次重试前回调（可用于打日志）
	OnRetry func(attempt int, err error)
}

// DefaultSubmitRetryConfig 默认重试配置
func DefaultSubmitRetryConfig() SubmitRetryConfig {
	return SubmitRetryConfig{
		MaxRetries:     5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// SubmitWithRetry 只在 ErrQueueFull 时退避重试，其他错误立即返回
func SubmitWithRetry(ctx context.Context, submit func(context.Context) (*QueuedResponse, error), config SubmitRetryConfig) (*QueuedResponse, error) {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			if config.OnRetry != nil {
				config.OnRetry(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * config.BackoffFactor)
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		resp, err := submit(ctx)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, ErrQueueFull) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("提交失败，已达最大重试次数: %w", lastErr)
}

// WaitForTask 轮询直到任务结束。done 返回最终状态；error 返回 ErrTaskFailed；
// ctx 超时只停止本地轮询，服务端任务照常执行
func (c *Client) WaitForTask(ctx context.Context, taskID string, interval time.Duration) (*TaskStatusResponse, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := c.TaskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch st.Status {
		case TaskStatusDone:
			return st, nil
		case TaskStatusError:
			return st, fmt.Errorf("%w: %s", ErrTaskFailed, st.ErrorDetail)
		case TaskStatusQueued, TaskStatusProcessing:
		default:
			return st, fmt.Errorf("unknown task status %q", st.Status)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}
