package task

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/azhengyongqin/vision-taskhub/internal/model"
)

// Payload 任务参数。只有本包声明的四种类型实现该接口，
// worker 通过类型分派执行，未知类型直接进入 error 状态。
type Payload interface {
	Kind() model.TaskKind
	Validate() error
	isPayload()
}

// SegmentFrame 单帧分割
type SegmentFrame struct {
	VideoPath     string
	Filename      string
	FrameIdx      int
	ObjIDs        []int
	BBoxes        [][]float64
	ConfThreshold float64
}

// SegmentFrames 多帧批量分割。Filenames 为空时所有帧都读取 Filename。
type SegmentFrames struct {
	VideoPath     string
	Filename      string
	Filenames     []string
	FrameIndices  []int
	ObjIDsList    [][]int
	BBoxesList    [][][]float64
	ConfThreshold float64
}

// AnalyzeVideo 对帧序列做时序理解（抽帧后送入视觉语言模型）
type AnalyzeVideo struct {
	VideoDir     string
	UserPrompt   string
	OriginalFPS  float64
	TargetFPS    float64
	FramesNeeded int
}

// AnalyzeImage 对一组 base64 图片做检测，结果画在最后一张图上
type AnalyzeImage struct {
	Base64Images []string
	UserPrompt   string
}

func (SegmentFrame) Kind() model.TaskKind  { return model.TaskKindSegmentFrame }
func (SegmentFrames) Kind() model.TaskKind { return model.TaskKindSegmentFrames }
func (AnalyzeVideo) Kind() model.TaskKind  { return model.TaskKindAnalyzeVideo }
func (AnalyzeImage) Kind() model.TaskKind  { return model.TaskKindAnalyzeImage }

func (SegmentFrame) isPayload()  {}
func (SegmentFrames) isPayload() {}
func (AnalyzeVideo) isPayload()  {}
func (AnalyzeImage) isPayload()  {}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Validate 校验单帧分割参数
func (p SegmentFrame) Validate() error {
	if strings.TrimSpace(p.VideoPath) == "" {
		return invalid("video_path is required")
	}
	if strings.TrimSpace(p.Filename) == "" {
		return invalid("filename is required")
	}
	if p.FrameIdx < 0 {
		return invalid("frame_idx must be >= 0")
	}
	if err := validatePrompts(p.ObjIDs, p.BBoxes); err != nil {
		return err
	}
	return validateThreshold(p.ConfThreshold)
}

// Validate 校验批量分割参数
func (p SegmentFrames) Validate() error {
	if strings.TrimSpace(p.VideoPath) == "" {
		return invalid("video_path is required")
	}
	n := len(p.FrameIndices)
	if n == 0 {
		return invalid("frame_indices must not be empty")
	}
	if len(p.ObjIDsList) != n || len(p.BBoxesList) != n {
		return invalid("frame_indices, obj_ids_list and bboxes_list must have the same length (%d, %d, %d)",
			n, len(p.ObjIDsList), len(p.BBoxesList))
	}
	if len(p.Filenames) == 0 {
		if strings.TrimSpace(p.Filename) == "" {
			return invalid("filename or filenames is required")
		}
	} else if len(p.Filenames) != n {
		return invalid("filenames must have the same length as frame_indices (%d != %d)", len(p.Filenames), n)
	}

	seen := make(map[int]struct{}, n)
	for i, idx := range p.FrameIndices {
		if idx < 0 {
			return invalid("frame_indices[%d] must be >= 0", i)
		}
		if _, dup := seen[idx]; dup {
			return invalid("duplicate frame index %d", idx)
		}
		seen[idx] = struct{}{}
		if len(p.Filenames) > 0 && strings.TrimSpace(p.Filenames[i]) == "" {
			return invalid("filenames[%d] is empty", i)
		}
		if err := validatePrompts(p.ObjIDsList[i], p.BBoxesList[i]); err != nil {
			return fmt.Errorf("frame %d: %w", idx, err)
		}
	}
	return validateThreshold(p.ConfThreshold)
}

// FilenameAt 返回第 i 帧对应的图片文件名
func (p SegmentFrames) FilenameAt(i int) string {
	if len(p.Filenames) > i {
		return p.Filenames[i]
	}
	return p.Filename
}

// Validate 校验视频分析参数
func (p AnalyzeVideo) Validate() error {
	if strings.TrimSpace(p.VideoDir) == "" {
		return invalid("video_dir is required")
	}
	if strings.TrimSpace(p.UserPrompt) == "" {
		return invalid("user_prompt is required")
	}
	if p.OriginalFPS <= 0 {
		return invalid("original_fps must be > 0")
	}
	if p.TargetFPS <= 0 {
		return invalid("target_fps must be > 0")
	}
	if p.TargetFPS > p.OriginalFPS {
		return invalid("target_fps (%.2f) must not exceed original_fps (%.2f)", p.TargetFPS, p.OriginalFPS)
	}
	if p.FramesNeeded < 1 {
		return invalid("frames_needed must be >= 1")
	}
	return nil
}

// Validate 校验图片分析参数（包括 base64 能否解码）
func (p AnalyzeImage) Validate() error {
	if len(p.Base64Images) == 0 {
		return invalid("base64_images must not be empty")
	}
	if strings.TrimSpace(p.UserPrompt) == "" {
		return invalid("user_prompt is required")
	}
	if _, err := p.Images(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// Images 解码全部图片，允许带 data URL 前缀
func (p AnalyzeImage) Images() ([][]byte, error) {
	out := make([][]byte, 0, len(p.Base64Images))
	for i, s := range p.Base64Images {
		if j := strings.Index(s, ";base64,"); j >= 0 && strings.HasPrefix(s, "data:") {
			s = s[j+len(";base64,"):]
		}
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("base64_images[%d]: %w", i, err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("base64_images[%d] is empty", i)
		}
		out = append(out, b)
	}
	return out, nil
}

func validatePrompts(objIDs []int, bboxes [][]float64) error {
	if len(objIDs) == 0 {
		return invalid("obj_ids must not be empty")
	}
	if len(objIDs) != len(bboxes) {
		return invalid("obj_ids and bboxes must have the same length (%d != %d)", len(objIDs), len(bboxes))
	}
	for i, b := range bboxes {
		if len(b) != 4 {
			return invalid("bboxes[%d] must be [x1, y1, x2, y2]", i)
		}
		if b[2] < b[0] || b[3] < b[1] {
			return invalid("bboxes[%d] has x2 < x1 or y2 < y1", i)
		}
	}
	return nil
}

func validateThreshold(v float64) error {
	if v < 0 || v > 1 {
		return invalid("conf_threshold must be within [0, 1]")
	}
	return nil
}
