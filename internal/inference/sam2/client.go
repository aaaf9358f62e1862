package sam2

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// PredictRequest 一帧图片 + 框提示
type PredictRequest struct {
	Image         []byte
	Boxes         [][]float64
	ObjIDs        []int
	ConfThreshold float64
}

// PredictResponse 叠加了掩码的图片（base64）
type PredictResponse struct {
	OverlayB64 string    `json:"overlay_b64"`
	Scores     []float64 `json:"scores,omitempty"`
}

// Predictor 掩码预测服务
type Predictor interface {
	Predict(ctx context.Context, req PredictRequest) (PredictResponse, error)
}

// Client 通过 HTTP 调用 SAM2 推理 sidecar
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient 创建客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type predictBody struct {
	ImageB64        string      `json:"image_b64"`
	Boxes           [][]float64 `json:"boxes"`
	ObjIDs          []int       `json:"obj_ids"`
	ConfThreshold   float64     `json:"conf_threshold"`
	MultimaskOutput bool        `json:"multimask_output"`
}

// Predict POST {base}/predict
func (c *Client) Predict(ctx context.Context, req PredictRequest) (PredictResponse, error) {
	body, err := json.Marshal(predictBody{
		ImageB64:      base64.StdEncoding.EncodeToString(req.Image),
		Boxes:         req.Boxes,
		ObjIDs:        req.ObjIDs,
		ConfThreshold: req.ConfThreshold,
	})
	if err != nil {
		return PredictResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return PredictResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return PredictResponse{}, fmt.Errorf("%w: sam2 request: %v", task.ErrInferenceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return PredictResponse{}, fmt.Errorf("%w: sam2 status %d: %s", task.ErrInferenceFailure, resp.StatusCode, string(b))
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PredictResponse{}, fmt.Errorf("%w: decode sam2 response: %v", task.ErrInferenceFailure, err)
	}
	if out.OverlayB64 == "" {
		return PredictResponse{}, fmt.Errorf("%w: sam2 returned empty overlay", task.ErrInferenceFailure)
	}
	return out, nil
}

// Ping GET {base}/health，用于就绪检查
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
