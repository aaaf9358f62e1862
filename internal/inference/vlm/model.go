package vlm

import "context"

// Part 多模态输入片段：文本或图片，二选一
type Part struct {
	Text     string
	Image    []byte
	MIMEType string
}

// TextPart 文本片段
func TextPart(s string) Part { return Part{Text: s} }

// ImagePart 图片片段
func ImagePart(b []byte, mimeType string) Part {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return Part{Image: b, MIMEType: mimeType}
}

// IsImage 是否为图片片段
func (p Part) IsImage() bool { return len(p.Image) > 0 }

// Model 视觉语言模型，输入一条多模态用户消息，返回生成的文本
type Model interface {
	Generate(ctx context.Context, parts []Part) (string, error)
}

// Sampling 采样参数
type Sampling struct {
	Temperature       float64
	TopP              float64
	TopK              int
	MaxTokens         int
	Seed              int
	PresencePenalty   float64
	RepetitionPenalty float64
}
