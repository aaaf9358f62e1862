package dto

import (
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

const (
	DefaultOriginalFPS  = 12.5
	DefaultTargetFPS    = 2.0
	DefaultFramesNeeded = 100
)

// SegmentFrameRequest 单帧分割请求
type SegmentFrameRequest struct {
	VideoPath     string      `json:"video_path" binding:"required,abspath" example:"/data/videos/demo/frames"`
	Filename      string      `json:"filename" binding:"required" example:"00001.jpg"`
	FrameIdx      *int        `json:"frame_idx" binding:"required,min=0" example:"0"`
	ObjIDs        []int       `json:"obj_ids" binding:"required,min=1"`
	BBoxes        [][]float64 `json:"bboxes" binding:"required,min=1"`
	ConfThreshold float64     `json:"conf_threshold" binding:"min=0,max=1" example:"0"`
}

// ToPayload 转换为任务参数
func (r SegmentFrameRequest) ToPayload() task.SegmentFrame {
	p := task.SegmentFrame{
		VideoPath:     r.VideoPath,
		Filename:      r.Filename,
		ObjIDs:        r.ObjIDs,
		BBoxes:        r.BBoxes,
		ConfThreshold: r.ConfThreshold,
	}
	if r.FrameIdx != nil {
		p.FrameIdx = *r.FrameIdx
	}
	return p
}

// SegmentFramesRequest 多帧分割请求，filenames 可选（逐帧指定文件名）
type SegmentFramesRequest struct {
	VideoPath     string        `json:"video_path" binding:"required,abspath" example:"/data/videos/demo/frames"`
	Filename      string        `json:"filename" example:"00001.jpg"`
	Filenames     []string      `json:"filenames"`
	FrameIndices  []int         `json:"frame_indices" binding:"required,min=1"`
	ObjIDsList    [][]int       `json:"obj_ids_list" binding:"required,min=1"`
	BBoxesList    [][][]float64 `json:"bboxes_list" binding:"required,min=1"`
	ConfThreshold float64       `json:"conf_threshold" binding:"min=0,max=1" example:"0"`
}

// ToPayload 转换为任务参数
func (r SegmentFramesRequest) ToPayload() task.SegmentFrames {
	return task.SegmentFrames{
		VideoPath:     r.VideoPath,
		Filename:      r.Filename,
		Filenames:     r.Filenames,
		FrameIndices:  r.FrameIndices,
		ObjIDsList:    r.ObjIDsList,
		BBoxesList:    r.BBoxesList,
		ConfThreshold: r.ConfThreshold,
	}
}

// AnalyzeVideoRequest 视频分析请求，fps/帧数缺省时使用默认值
type AnalyzeVideoRequest struct {
	VideoDir     string   `json:"video_dir" binding:"required,abspath" example:"/data/videos/demo/frames"`
	UserPrompt   string   `json:"user_prompt" binding:"required" example:"找出画面中所有车辆并给出 bbox_2d"`
	OriginalFPS  *float64 `json:"original_fps" example:"12.5"`
	TargetFPS    *float64 `json:"target_fps" example:"2"`
	FramesNeeded *int     `json:"frames_needed" example:"100"`
}

// ToPayload 转换为任务参数
func (r AnalyzeVideoRequest) ToPayload() task.AnalyzeVideo {
	p := task.AnalyzeVideo{
		VideoDir:     r.VideoDir,
		UserPrompt:   r.UserPrompt,
		OriginalFPS:  DefaultOriginalFPS,
		TargetFPS:    DefaultTargetFPS,
		FramesNeeded: DefaultFramesNeeded,
	}
	if r.OriginalFPS != nil {
		p.OriginalFPS = *r.OriginalFPS
	}
	if r.TargetFPS != nil {
		p.TargetFPS = *r.TargetFPS
	}
	if r.FramesNeeded != nil {
		p.FramesNeeded = *r.FramesNeeded
	}
	return p
}

// AnalyzeImageRequest 图片分析请求
type AnalyzeImageRequest struct {
	Base64Images []string `json:"base64_images" binding:"required,min=1"`
	UserPrompt   string   `json:"user_prompt" binding:"required" example:"检测图中的箱子"`
}

// ToPayload 转换为任务参数
func (r AnalyzeImageRequest) ToPayload() task.AnalyzeImage {
	return task.AnalyzeImage{
		Base64Images: r.Base64Images,
		UserPrompt:   r.UserPrompt,
	}
}
