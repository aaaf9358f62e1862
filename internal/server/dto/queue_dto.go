package dto

// QueueStatsResponse 队列统计响应
type QueueStatsResponse struct {
	Depth       int            `json:"depth" example:"2"`
	Capacity    int            `json:"capacity" example:"5"`
	Closed      bool           `json:"closed" example:"false"`
	WorkerAlive bool           `json:"worker_alive" example:"true"`
	WorkerBusy  bool           `json:"worker_busy" example:"true"`
	Records     map[string]int `json:"records"` // status -> 记录数
}

// HistoryRequest 执行历史查询请求
type HistoryRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=done error" example:"error"`
	Kind   string `form:"kind" binding:"omitempty,taskkind" example:"analyze_video"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200" example:"50"`
}

// HistoryResponse 执行历史响应
type HistoryResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count" example:"1"`
}
