package vision

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/azhengyongqin/vision-taskhub/internal/inference/vlm"
	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// VideoResult analyze_video 的结果
type VideoResult struct {
	Status         string      `json:"status"`
	Results        []Detection `json:"results"`
	FrameCount     int         `json:"frame_count"`
	DetectionCount int         `json:"detection_count"`
}

// ImageResult analyze_image 的结果
type ImageResult struct {
	Status         string      `json:"status"`
	Results        []Detection `json:"results"`
	AnnotatedImage string      `json:"annotated_image"`
	DetectionCount int         `json:"detection_count"`
}

// Service 基于视觉语言模型的视频/图片理解
type Service struct {
	model vlm.Model
}

func NewService(model vlm.Model) *Service {
	return &Service{model: model}
}

// AnalyzeVideo 从帧目录均匀抽帧，每帧前附时间戳，最后附用户提示
func (s *Service) AnalyzeVideo(ctx context.Context, p task.AnalyzeVideo) (*VideoResult, error) {
	dir, err := filepath.Abs(p.VideoDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve video_dir: %v", task.ErrResourceFailure, err)
	}
	names, err := listFrames(dir)
	if err != nil {
		return nil, err
	}
	if p.TargetFPS > p.OriginalFPS {
		return nil, fmt.Errorf("%w: target_fps (%.2f) must not exceed original_fps (%.2f)", task.ErrValidation, p.TargetFPS, p.OriginalFPS)
	}

	wanted := p.FramesNeeded
	if wanted > len(names) {
		logger.L.Warn().
			Int("frames_needed", wanted).
			Int("available", len(names)).
			Msg("所需帧数超过实际帧数，已截断")
		wanted = len(names)
	}

	indices := sampleIndices(len(names), wanted)
	parts := make([]vlm.Part, 0, 2*len(indices)+1)
	for _, idx := range indices {
		path := filepath.Join(dir, names[idx])
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read frame %s: %v", task.ErrResourceFailure, path, err)
		}
		parts = append(parts,
			vlm.TextPart(timestampLabel(idx, p.OriginalFPS)),
			vlm.ImagePart(b, "image/jpeg"),
		)
	}
	parts = append(parts, vlm.TextPart(p.UserPrompt))

	text, err := s.model.Generate(ctx, parts)
	if err != nil {
		return nil, err
	}
	detections, err := ParseDetections(text)
	if err != nil {
		return nil, err
	}

	return &VideoResult{
		Status:         "success",
		Results:        detections,
		FrameCount:     len(indices),
		DetectionCount: len(detections),
	}, nil
}

// AnalyzeImage 图片依次标记为 <1 seconds>、<2 seconds>...，检测框画在最后一张图上
func (s *Service) AnalyzeImage(ctx context.Context, p task.AnalyzeImage) (*ImageResult, error) {
	images, err := p.Images()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", task.ErrResourceFailure, err)
	}

	parts := make([]vlm.Part, 0, 2*len(images)+1)
	for i, img := range images {
		parts = append(parts,
			vlm.TextPart(fmt.Sprintf("<%d seconds>", i+1)),
			vlm.ImagePart(img, http.DetectContentType(img)),
		)
	}
	parts = append(parts, vlm.TextPart(p.UserPrompt))

	text, err := s.model.Generate(ctx, parts)
	if err != nil {
		return nil, err
	}
	detections, err := ParseDetections(text)
	if err != nil {
		return nil, err
	}

	annotated, err := DrawDetections(images[len(images)-1], detections)
	if err != nil {
		return nil, fmt.Errorf("%w: annotate image: %v", task.ErrResourceFailure, err)
	}

	return &ImageResult{
		Status:         "success",
		Results:        detections,
		AnnotatedImage: annotated,
		DetectionCount: len(detections),
	}, nil
}
