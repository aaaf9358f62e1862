package sdk

import (
	"encoding/json"
	"errors"
	"time"
)

// SegmentFrameRequest 单帧分割请求
type SegmentFrameRequest struct {
	VideoPath     string      `json:"video_path"`
	Filename      string      `json:"filename"`
	FrameIdx      int         `json:"frame_idx"`
	ObjIDs        []int       `json:"obj_ids"`
	BBoxes        [][]float64 `json:"bboxes"`
	ConfThreshold float64     `json:"conf_threshold,omitempty"`
}

// SegmentFramesRequest 多帧分割请求
type SegmentFramesRequest struct {
	VideoPath     string        `json:"video_path"`
	Filename      string        `json:"filename,omitempty"`
	Filenames     []string      `json:"filenames,omitempty"`
	FrameIndices  []int         `json:"frame_indices"`
	ObjIDsList    [][]int       `json:"obj_ids_list"`
	BBoxesList    [][][]float64 `json:"bboxes_list"`
	ConfThreshold float64       `json:"conf_threshold,omitempty"`
}

// AnalyzeVideoRequest 视频分析请求，数值为 0 时使用服务端默认值
type AnalyzeVideoRequest struct {
	VideoDir     string  `json:"video_dir"`
	UserPrompt   string  `json:"user_prompt"`
	OriginalFPS  float64 `json:"original_fps,omitempty"`
	TargetFPS    float64 `json:"target_fps,omitempty"`
	FramesNeeded int     `json:"frames_needed,omitempty"`
}

// AnalyzeImageRequest 图片分析请求
type AnalyzeImageRequest struct {
	Base64Images []string `json:"base64_images"`
	UserPrompt   string   `json:"user_prompt"`
}

// QueuedResponse 入队响应
type QueuedResponse struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

// TaskStatusResponse 任务状态。Result 只在 done 时有值，ErrorDetail 只在 error 时有值
type TaskStatusResponse struct {
	TaskID      string            `json:"task_id"`
	Status      TaskStatus        `json:"status"`
	Kind        string            `json:"kind,omitempty"`
	Frames      map[string]string `json:"frames,omitempty"`
	Result      json.RawMessage   `json:"result,omitempty"`
	ErrorDetail string            `json:"error_detail,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
}

// UnmarshalResult 把 result 解析到 v
func (t *TaskStatusResponse) UnmarshalResult(v any) error {
	if len(t.Result) == 0 {
		return errors.New("task has no result")
	}
	return json.Unmarshal(t.Result, v)
}

// Detection 视觉语言模型输出的一条检测
type Detection struct {
	Time  *float64  `json:"time,omitempty"`
	BBox  []float64 `json:"bbox_2d,omitempty"`
	Label string    `json:"label,omitempty"`
}

// VideoResult analyze_video 的结果
type VideoResult struct {
	Status         string            `json:"status"`
	Results        []json.RawMessage `json:"results"`
	FrameCount     int               `json:"frame_count"`
	DetectionCount int               `json:"detection_count"`
}

// Detections 解析 results 中的标准字段，其余字段保留在 Results 原文中
func (r *VideoResult) Detections() ([]Detection, error) {
	out := make([]Detection, 0, len(r.Results))
	for _, raw := range r.Results {
		var d Detection
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
