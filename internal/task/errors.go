package task

import "errors"

var (
	// ErrValidation 任务参数不合法（准入阶段拒绝，不创建记录）
	ErrValidation = errors.New("invalid task payload")

	// ErrCapacityExceeded 队列已满（快速失败，不阻塞调用方）
	ErrCapacityExceeded = errors.New("queue is full")

	// ErrQueueClosed 队列已关闭（服务正在退出）
	ErrQueueClosed = errors.New("queue is closed")

	// ErrNotFound 任务不存在（从未创建、准入回滚或已被清理）
	ErrNotFound = errors.New("task not found")

	// ErrInvalidTransition 状态回退或跳跃
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnsupportedPayload worker 无法识别的任务类型
	ErrUnsupportedPayload = errors.New("unsupported task payload")

	// ErrInferenceFailure 推理服务调用失败
	ErrInferenceFailure = errors.New("inference failed")

	// ErrResourceFailure 输入资源不可用（文件缺失、解码失败等）
	ErrResourceFailure = errors.New("resource unavailable")
)
