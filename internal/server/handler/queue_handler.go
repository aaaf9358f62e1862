package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/server/dto"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// QueueHandler Queue 相关 API Handler
type QueueHandler struct {
	store  *task.Store
	queue  *task.Queue
	worker *task.Worker
}

// NewQueueHandler 创建 QueueHandler
func NewQueueHandler(store *task.Store, queue *task.Queue, worker *task.Worker) *QueueHandler {
	return &QueueHandler{
		store:  store,
		queue:  queue,
		worker: worker,
	}
}

// GetQueueStats godoc
// @Summary 查询队列状态
// @Description 当前排队数、容量、各状态记录数和 worker 状态
// @Tags Queues
// @Produce json
// @Success 200 {object} dto.QueueStatsResponse
// @Router /queue/stats [get]
func (h *QueueHandler) GetQueueStats(c *gin.Context) {
	records := make(map[string]int)
	for status, n := range h.store.Counts() {
		records[string(status)] = n
	}

	resp := dto.QueueStatsResponse{
		Depth:    h.queue.Len(),
		Capacity: h.queue.Cap(),
		Closed:   h.queue.Closed(),
		Records:  records,
	}
	if h.worker != nil {
		resp.WorkerAlive = h.worker.Alive()
		resp.WorkerBusy = h.worker.Busy()
	}

	c.JSON(http.StatusOK, resp)
}
