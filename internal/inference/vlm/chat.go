package vlm

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

// ChatModel OpenAI 兼容的 /chat/completions 接口（例如 vLLM 部署的 Qwen-VL）
type ChatModel struct {
	BaseURL    string
	Model      string
	APIKey     string
	Sampling   Sampling
	HTTPClient *http.Client
}

// NewChatModel 创建 ChatModel
func NewChatModel(baseURL, model, apiKey string, sampling Sampling, timeout time.Duration) *ChatModel {
	return &ChatModel{
		BaseURL:  baseURL,
		Model:    model,
		APIKey:   apiKey,
		Sampling: sampling,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatRequest struct {
	Model             string        `json:"model"`
	Messages          []chatMessage `json:"messages"`
	Temperature       float64       `json:"temperature"`
	TopP              float64       `json:"top_p"`
	TopK              int           `json:"top_k,omitempty"`
	MaxTokens         int           `json:"max_tokens,omitempty"`
	Seed              int           `json:"seed,omitempty"`
	PresencePenalty   float64       `json:"presence_penalty,omitempty"`
	RepetitionPenalty float64       `json:"repetition_penalty,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate 发送一条 user 消息并返回首个 choice 的文本
func (m *ChatModel) Generate(ctx context.Context, parts []Part) (string, error) {
	content := make([]chatContent, 0, len(parts))
	for _, p := range parts {
		if p.IsImage() {
			content = append(content, chatContent{
				Type: "image_url",
				ImageURL: &chatImageURL{
					URL: "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Image),
				},
			})
			continue
		}
		content = append(content, chatContent{Type: "text", Text: p.Text})
	}

	body, err := json.Marshal(chatRequest{
		Model:             m.Model,
		Messages:          []chatMessage{{Role: "user", Content: content}},
		Temperature:       m.Sampling.Temperature,
		TopP:              m.Sampling.TopP,
		TopK:              m.Sampling.TopK,
		MaxTokens:         m.Sampling.MaxTokens,
		Seed:              m.Sampling.Seed,
		PresencePenalty:   m.Sampling.PresencePenalty,
		RepetitionPenalty: m.Sampling.RepetitionPenalty,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.APIKey)
	}

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: chat request: %v", task.ErrInferenceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: chat status %d: %s", task.ErrInferenceFailure, resp.StatusCode, string(b))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %v", task.ErrInferenceFailure, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: chat response has no choices", task.ErrInferenceFailure)
	}
	return out.Choices[0].Message.Content, nil
}
