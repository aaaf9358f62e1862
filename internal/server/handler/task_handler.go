package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/server/dto"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// Admitter 任务准入
type Admitter interface {
	Admit(p task.Payload) (string, error)
}

// StatusReader 任务状态查询
type StatusReader interface {
	Status(id string) (task.View, error)
}

// TaskHandler Task 相关 API Handler
type TaskHandler struct {
	admitter Admitter
	statuses StatusReader
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(admitter Admitter, statuses StatusReader) *TaskHandler {
	return &TaskHandler{
		admitter: admitter,
		statuses: statuses,
	}
}

func (h *TaskHandler) admit(c *gin.Context, p task.Payload) {
	id, err := h.admitter.Admit(p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QueuedResponse{Status: "queued", TaskID: id})
}

// SegmentFrame godoc
// @Summary 提交单帧分割任务
// @Description 按给定的框提示对一帧图像做分割，立即返回 task_id
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.SegmentFrameRequest true "单帧分割请求"
// @Success 200 {object} dto.QueuedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /segment_frame [post]
func (h *TaskHandler) SegmentFrame(c *gin.Context) {
	var req dto.SegmentFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	h.admit(c, req.ToPayload())
}

// SegmentFrames godoc
// @Summary 提交多帧分割任务
// @Description 一个任务内按顺序分割多帧，执行中可通过 frames 字段查看进度
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.SegmentFramesRequest true "多帧分割请求"
// @Success 200 {object} dto.QueuedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /segment_frames [post]
func (h *TaskHandler) SegmentFrames(c *gin.Context) {
	var req dto.SegmentFramesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	h.admit(c, req.ToPayload())
}

// AnalyzeVideo godoc
// @Summary 提交视频分析任务
// @Description 从帧目录抽帧后交给视觉语言模型做时序检测
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeVideoRequest true "视频分析请求"
// @Success 200 {object} dto.QueuedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /analyze_video [post]
func (h *TaskHandler) AnalyzeVideo(c *gin.Context) {
	var req dto.AnalyzeVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	h.admit(c, req.ToPayload())
}

// AnalyzeImage godoc
// @Summary 提交图片分析任务
// @Description 对 base64 图片做检测，结果框画在最后一张图上
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeImageRequest true "图片分析请求"
// @Success 200 {object} dto.QueuedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /analyze_image [post]
func (h *TaskHandler) AnalyzeImage(c *gin.Context) {
	var req dto.AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	h.admit(c, req.ToPayload())
}

// GetTaskStatus godoc
// @Summary 查询任务状态
// @Description queued/processing 只返回状态（批量分割附带 frames 进度），done/error 返回完整记录
// @Tags Tasks
// @Produce json
// @Param task_id path string true "任务 ID"
// @Success 200 {object} task.View
// @Failure 404 {object} dto.ErrorResponse
// @Router /task_status/{task_id} [get]
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	view, err := h.statuses.Status(c.Param("task_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
