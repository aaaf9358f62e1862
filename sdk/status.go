package sdk

// TaskStatus 统一状态枚举，避免用户侧写错字符串。
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusError      TaskStatus = "error"
)

// Terminal 是否为终态
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusDone || s == TaskStatusError
}
