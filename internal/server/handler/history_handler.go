package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/history"
	"github.com/azhengyongqin/vision-taskhub/internal/server/dto"
)

// HistoryLister 执行历史查询
type HistoryLister interface {
	List(ctx context.Context, f history.ListFilter) ([]history.Execution, error)
}

// HistoryHandler 执行历史 Handler
type HistoryHandler struct {
	lister HistoryLister
}

// NewHistoryHandler lister 为 nil 时接口返回 501
func NewHistoryHandler(lister HistoryLister) *HistoryHandler {
	return &HistoryHandler{lister: lister}
}

// ListHistory godoc
// @Summary 查询执行历史
// @Description 已结束任务的审计记录（需配置 POSTGRES_DSN）
// @Tags History
// @Produce json
// @Param status query string false "done 或 error"
// @Param kind query string false "任务类型"
// @Param limit query int false "返回条数（1-200，默认 50）"
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 501 {object} dto.ErrorResponse
// @Router /history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	if h.lister == nil {
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "执行历史未启用（未配置 POSTGRES_DSN）"})
		return
	}

	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	items, err := h.lister.List(c.Request.Context(), history.ListFilter{
		Status: req.Status,
		Kind:   req.Kind,
		Limit:  req.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "查询执行历史失败"})
		return
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{Items: items, Count: len(items)})
}
