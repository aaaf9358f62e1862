package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/metrics"
)

// Gateway 任务准入：校验 -> 生成 id -> 建记录 -> 入队。
// 入队失败时回滚记录，被拒绝的任务不会留下任何状态。
type Gateway struct {
	store *Store
	queue *Queue
	newID func() string
}

func NewGateway(store *Store, queue *Queue) *Gateway {
	return &Gateway{
		store: store,
		queue: queue,
		newID: uuid.NewString,
	}
}

// Admit 接收一个任务，返回 task_id。
// 记录先于入队创建，返回时该 id 已可被查询。
func (g *Gateway) Admit(p Payload) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: missing payload", ErrValidation)
	}
	kind := string(p.Kind())

	if err := p.Validate(); err != nil {
		if !errors.Is(err, ErrValidation) {
			err = fmt.Errorf("%w: %v", ErrValidation, err)
		}
		metrics.RecordTaskRejected(kind, "validation")
		return "", err
	}

	id := g.newID()
	if err := g.store.Create(id, p); err != nil {
		metrics.RecordError("gateway", "create_record")
		return "", err
	}

	if err := g.queue.TryEnqueue(id); err != nil {
		g.store.Remove(id)
		reason := "capacity"
		if errors.Is(err, ErrQueueClosed) {
			reason = "closed"
		}
		metrics.RecordTaskRejected(kind, reason)
		logger.L.Warn().
			Str("kind", kind).
			Int("queue_capacity", g.queue.Cap()).
			Err(err).
			Msg("任务准入被拒绝")
		return "", err
	}

	metrics.RecordTaskAdmitted(kind)
	metrics.UpdateQueueDepth(g.queue.Len())
	log := logger.WithTaskID(id)
	log.Info().
		Str("kind", kind).
		Int("queue_depth", g.queue.Len()).
		Msg("任务已入队")
	return id, nil
}
