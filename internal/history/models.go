package history

import (
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// Execution 一次任务执行的审计记录
type Execution struct {
	TaskID     string     `json:"task_id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
	DurationMs int64      `json:"duration_ms"`
}

// TaskExecutionModel GORM 模型 - 对应 task_execution 表
type TaskExecutionModel struct {
	ID         int64      `gorm:"primaryKey;autoIncrement;column:id"`
	TaskID     string     `gorm:"column:task_id;uniqueIndex;type:varchar(64);not null"`
	Kind       string     `gorm:"column:kind;type:varchar(32);not null"`
	Status     string     `gorm:"column:status;type:varchar(16);not null;index"`
	Error      *string    `gorm:"column:error;type:text"`
	StartedAt  *time.Time `gorm:"column:started_at"`
	FinishedAt time.Time  `gorm:"column:finished_at;not null;index:,sort:desc"`
	DurationMs int64      `gorm:"column:duration_ms;default:0"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TableName 指定表名
func (TaskExecutionModel) TableName() string { return "task_execution" }

// ToExecution 转换为 Execution 实体
func (m *TaskExecutionModel) ToExecution() Execution {
	e := Execution{
		TaskID:     m.TaskID,
		Kind:       m.Kind,
		Status:     m.Status,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		DurationMs: m.DurationMs,
	}
	if m.Error != nil {
		e.Error = *m.Error
	}
	return e
}

// OutcomeToModel 从 worker 的执行摘要创建模型
func OutcomeToModel(o task.Outcome) TaskExecutionModel {
	m := TaskExecutionModel{
		TaskID:     o.TaskID,
		Kind:       string(o.Kind),
		Status:     string(o.Status),
		FinishedAt: o.FinishedAt,
	}
	if !o.StartedAt.IsZero() {
		started := o.StartedAt
		m.StartedAt = &started
		m.DurationMs = o.FinishedAt.Sub(o.StartedAt).Milliseconds()
	}
	if o.Error != "" {
		msg := o.Error
		m.Error = &msg
	}
	return m
}
