package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/frames"
	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/server/dto"
)

// FolderScanner 目录扫描
type FolderScanner interface {
	Scan(ctx context.Context, folder string) ([]frames.Frame, error)
}

// FrameHandler 帧浏览 Handler（同步接口，不进入任务队列）
type FrameHandler struct {
	scanner FolderScanner
}

// NewFrameHandler 创建 FrameHandler
func NewFrameHandler(scanner FolderScanner) *FrameHandler {
	return &FrameHandler{scanner: scanner}
}

// ScanFolder godoc
// @Summary 扫描帧目录
// @Description 递归列出目录下的 .jpg/.jpeg 帧，按文件名排序
// @Tags Frames
// @Accept json
// @Produce json
// @Param request body dto.ScanFolderRequest true "扫描请求"
// @Success 200 {object} dto.ScanFolderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scan_folder [post]
func (h *FrameHandler) ScanFolder(c *gin.Context) {
	var req dto.ScanFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	list, err := h.scanner.Scan(c.Request.Context(), req.FolderPath)
	if err != nil {
		logger.L.Error().Err(err).Str("folder_path", req.FolderPath).Msg("扫描文件夹失败")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "扫描文件夹失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ScanFolderResponse{
		Success:    true,
		FolderPath: req.FolderPath,
		FrameCount: len(list),
		Frames:     list,
	})
}

// FrameImage godoc
// @Summary 读取帧图像
// @Description 返回 folder_path 下指定文件的原始图像内容
// @Tags Frames
// @Produce image/jpeg
// @Param folder_path query string true "帧目录（绝对路径）"
// @Param filename query string true "文件名"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /frame_image [get]
func (h *FrameHandler) FrameImage(c *gin.Context) {
	var q dto.FrameImageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	path, err := frames.ResolveFrameImage(q.FolderPath, q.Filename)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, frames.ErrFileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.File(path)
}
