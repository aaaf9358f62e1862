package model

// TaskStatus 任务生命周期状态（用于 API/指标/历史记录）。
// 约定：
// - queued: 已通过准入，等待 worker 消费
// - processing: worker 已取出并开始执行
// - done: 执行成功，result 可见
// - error: 执行失败，error_detail 可见（不会自动重试）
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusError      TaskStatus = "error"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusQueued, TaskStatusProcessing, TaskStatusDone, TaskStatusError:
		return true
	default:
		return false
	}
}

// Terminal 是否为终态
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusDone || s == TaskStatusError
}

// CanTransitionTo 状态只允许单向前进：queued -> processing -> {done | error}
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusQueued:
		return next == TaskStatusProcessing
	case TaskStatusProcessing:
		return next == TaskStatusDone || next == TaskStatusError
	default:
		return false
	}
}

// TaskKind 任务类型判别值
type TaskKind string

const (
	TaskKindSegmentFrame  TaskKind = "segment_frame"
	TaskKindSegmentFrames TaskKind = "segment_frames"
	TaskKindAnalyzeVideo  TaskKind = "analyze_video"
	TaskKindAnalyzeImage  TaskKind = "analyze_image"
)

// TaskKinds 返回全部已声明的任务类型
func TaskKinds() []TaskKind {
	return []TaskKind{
		TaskKindSegmentFrame,
		TaskKindSegmentFrames,
		TaskKindAnalyzeVideo,
		TaskKindAnalyzeImage,
	}
}

func (k TaskKind) Valid() bool {
	for _, v := range TaskKinds() {
		if v == k {
			return true
		}
	}
	return false
}

// ItemDone 子项完成标记（frames 进度表中的值）
const ItemDone = "done"
