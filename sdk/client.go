package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrQueueFull 服务端队列已满（429），稍后重试
	ErrQueueFull = errors.New("queue is full")

	// ErrTaskNotFound 任务不存在或已被清理（404）
	ErrTaskNotFound = errors.New("task not found")
)

// APIError 非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Unwrap 让 errors.Is 能识别 429/404
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrQueueFull
	case http.StatusNotFound:
		return ErrTaskNotFound
	}
	return nil
}

// Client HTTP 客户端，用于提交任务和轮询状态
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient 创建客户端
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// analyze_image 请求体包含 base64 图片
			Timeout: 60 * time.Second,
		},
	}
}

// SubmitSegmentFrame 提交单帧分割任务
func (c *Client) SubmitSegmentFrame(ctx context.Context, req SegmentFrameRequest) (*QueuedResponse, error) {
	return c.submit(ctx, "/segment_frame", req)
}

// SubmitSegmentFrames 提交多帧分割任务
func (c *Client) SubmitSegmentFrames(ctx context.Context, req SegmentFramesRequest) (*QueuedResponse, error) {
	return c.submit(ctx, "/segment_frames", req)
}

// SubmitAnalyzeVideo 提交视频分析任务
func (c *Client) SubmitAnalyzeVideo(ctx context.Context, req AnalyzeVideoRequest) (*QueuedResponse, error) {
	return c.submit(ctx, "/analyze_video", req)
}

// SubmitAnalyzeImage 提交图片分析任务
func (c *Client) SubmitAnalyzeImage(ctx context.Context, req AnalyzeImageRequest) (*QueuedResponse, error) {
	return c.submit(ctx, "/analyze_image", req)
}

// TaskStatus 查询任务状态
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	var out TaskStatusResponse
	if err := c.do(ctx, http.MethodGet, "/task_status/"+url.PathEscape(taskID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) submit(ctx context.Context, path string, req any) (*QueuedResponse, error) {
	var out QueuedResponse
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(b)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage 优先取 {"error": "..."}，否则返回原文
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
