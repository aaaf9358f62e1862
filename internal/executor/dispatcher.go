package executor

import (
	"context"
	"fmt"

	"github.com/azhengyongqin/vision-taskhub/internal/segmentation"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
	"github.com/azhengyongqin/vision-taskhub/internal/vision"
)

// Segmenter 分割服务
type Segmenter interface {
	SegmentFrame(ctx context.Context, p task.SegmentFrame, progress task.ProgressFunc) (map[string]string, error)
	SegmentFrames(ctx context.Context, p task.SegmentFrames, progress task.ProgressFunc) (map[string]string, error)
}

// Analyzer 视觉理解服务
type Analyzer interface {
	AnalyzeVideo(ctx context.Context, p task.AnalyzeVideo) (*vision.VideoResult, error)
	AnalyzeImage(ctx context.Context, p task.AnalyzeImage) (*vision.ImageResult, error)
}

var (
	_ Segmenter = (*segmentation.Service)(nil)
	_ Analyzer  = (*vision.Service)(nil)
)

// Dispatcher 按 payload 类型把任务交给对应服务，实现 task.Executor
type Dispatcher struct {
	segmenter Segmenter
	analyzer  Analyzer
}

func NewDispatcher(segmenter Segmenter, analyzer Analyzer) *Dispatcher {
	return &Dispatcher{
		segmenter: segmenter,
		analyzer:  analyzer,
	}
}

// Execute 实现 task.Executor
func (d *Dispatcher) Execute(ctx context.Context, p task.Payload, progress task.ProgressFunc) (any, error) {
	switch req := p.(type) {
	case task.SegmentFrame:
		return d.segmenter.SegmentFrame(ctx, req, progress)
	case task.SegmentFrames:
		return d.segmenter.SegmentFrames(ctx, req, progress)
	case task.AnalyzeVideo:
		return d.analyzer.AnalyzeVideo(ctx, req)
	case task.AnalyzeImage:
		return d.analyzer.AnalyzeImage(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %T", task.ErrUnsupportedPayload, p)
	}
}
