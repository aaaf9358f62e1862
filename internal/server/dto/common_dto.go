package dto

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error" example:"Queue is full, try again later."`
}

// QueuedResponse 任务入队响应
type QueuedResponse struct {
	Status string `json:"status" example:"queued"`
	TaskID string `json:"task_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}
