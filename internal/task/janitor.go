package task

import (
	"context"
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/metrics"
)

// Janitor 定期清理超过保留期的终态记录
type Janitor struct {
	store     *Store
	retention time.Duration
	interval  time.Duration
}

// NewJanitor retention <= 0 表示永久保留
func NewJanitor(store *Store, retention, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		store:     store,
		retention: retention,
		interval:  interval,
	}
}

// Run 阻塞直到 ctx 结束
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			j.Sweep(now)
		}
	}
}

// Sweep 执行一次清理，返回清理数量
func (j *Janitor) Sweep(now time.Time) int {
	n := 0
	if j.retention > 0 {
		n = j.store.EvictFinishedBefore(now.Add(-j.retention))
		if n > 0 {
			log := logger.WithComponent("janitor")
			log.Info().Int("evicted", n).Msg("已清理过期任务记录")
		}
	}

	counts := j.store.Counts()
	byStatus := make(map[string]int, len(counts))
	for status, c := range counts {
		byStatus[string(status)] = c
	}
	metrics.UpdateTaskRecords(byStatus)
	return n
}
