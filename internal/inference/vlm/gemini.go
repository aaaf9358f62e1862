package vlm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// GeminiModel 通过 Gemini API 调用视觉语言模型
type GeminiModel struct {
	client   *genai.Client
	model    string
	sampling Sampling
}

// NewGeminiModel 创建 GeminiModel
func NewGeminiModel(ctx context.Context, apiKey, model string, sampling Sampling) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if model == "" {
		return nil, errors.New("model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiModel{
		client:   client,
		model:    model,
		sampling: sampling,
	}, nil
}

// Generate 发送一条 user 内容并拼接首个候选的文本
func (m *GeminiModel) Generate(ctx context.Context, parts []Part) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, []*genai.Content{toContent(parts)}, m.config())
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", task.ErrInferenceFailure, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no text", task.ErrInferenceFailure)
	}
	return text, nil
}

func (m *GeminiModel) config() *genai.GenerateContentConfig {
	temperature := float32(m.sampling.Temperature)
	topP := float32(m.sampling.TopP)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		TopP:        &topP,
	}
	if m.sampling.TopK > 0 {
		topK := float32(m.sampling.TopK)
		cfg.TopK = &topK
	}
	if m.sampling.PresencePenalty != 0 {
		pp := float32(m.sampling.PresencePenalty)
		cfg.PresencePenalty = &pp
	}
	return cfg
}

func toContent(parts []Part) *genai.Content {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsImage() {
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: p.MIMEType, Data: p.Image}})
			continue
		}
		out = append(out, &genai.Part{Text: p.Text})
	}
	return &genai.Content{Role: "user", Parts: out}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
