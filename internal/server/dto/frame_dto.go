package dto

import "github.com/azhengyongqin/vision-taskhub/internal/frames"

// ScanFolderRequest 目录扫描请求
type ScanFolderRequest struct {
	FolderPath string `json:"folder_path" binding:"required" example:"/data/videos/demo/frames"`
}

// ScanFolderResponse 目录扫描响应
type ScanFolderResponse struct {
	Success    bool           `json:"success" example:"true"`
	FolderPath string         `json:"folder_path" example:"/data/videos/demo/frames"`
	FrameCount int            `json:"frame_count" example:"120"`
	Frames     []frames.Frame `json:"frames"`
}

// FrameImageQuery 读取单帧图像的查询参数
type FrameImageQuery struct {
	FolderPath string `form:"folder_path" binding:"required" example:"/data/videos/demo/frames"`
	Filename   string `form:"filename" binding:"required" example:"00001.jpg"`
}
