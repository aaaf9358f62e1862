package history

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// ListFilter 执行历史查询过滤条件
type ListFilter struct {
	Status string
	Kind   string
	Limit  int
}

// Recorder 基于 GORM 的执行历史，仅做审计，状态查询不读取这里
type Recorder struct {
	db *gorm.DB
}

var _ task.OutcomeRecorder = (*Recorder)(nil)

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// RecordOutcome 实现 task.OutcomeRecorder
func (r *Recorder) RecordOutcome(ctx context.Context, o task.Outcome) error {
	m := OutcomeToModel(o)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert task_execution: %w", err)
	}
	return nil
}

// List 按结束时间倒序返回执行历史
func (r *Recorder) List(ctx context.Context, f ListFilter) ([]Execution, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&TaskExecutionModel{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}

	var rows []TaskExecutionModel
	if err := q.Order("finished_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list task_execution: %w", err)
	}

	out := make([]Execution, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToExecution())
	}
	return out, nil
}
