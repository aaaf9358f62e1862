package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_taskhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vision_taskhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 准入指标
	TasksAdmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_taskhub_tasks_admitted_total",
			Help: "Total number of tasks accepted into the queue",
		},
		[]string{"kind"},
	)

	TasksRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_taskhub_tasks_rejected_total",
			Help: "Total number of task submissions rejected at admission",
		},
		[]string{"kind", "reason"},
	)

	// 执行指标
	TasksFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_taskhub_tasks_finished_total",
			Help: "Total number of tasks that reached a terminal status",
		},
		[]string{"kind", "status"},
	)

	TaskExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vision_taskhub_task_execution_duration_seconds",
			Help:    "Task execution duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"kind"},
	)

	// 队列指标
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vision_taskhub_queue_depth",
			Help: "Number of tasks waiting in the queue",
		},
	)

	QueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vision_taskhub_queue_capacity",
			Help: "Maximum number of tasks the queue can hold",
		},
	)

	TaskRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vision_taskhub_task_records",
			Help: "Number of task records held in memory",
		},
		[]string{"status"},
	)

	// Worker 指标
	WorkerBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vision_taskhub_worker_busy",
			Help: "1 while the worker is executing a task",
		},
	)

	// 错误指标
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_taskhub_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "type"},
	)
)

// RecordHTTPRequest 记录 HTTP 请求
func RecordHTTPRequest(method, path string, status int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordTaskAdmitted 记录任务准入
func RecordTaskAdmitted(kind string) {
	TasksAdmittedTotal.WithLabelValues(kind).Inc()
}

// RecordTaskRejected 记录准入拒绝（validation / capacity / closed）
func RecordTaskRejected(kind, reason string) {
	TasksRejectedTotal.WithLabelValues(kind, reason).Inc()
}

// RecordTaskFinished 记录任务结束
func RecordTaskFinished(kind, status string, duration float64) {
	TasksFinishedTotal.WithLabelValues(kind, status).Inc()
	if duration > 0 {
		TaskExecutionDuration.WithLabelValues(kind).Observe(duration)
	}
}

// UpdateQueueDepth 更新排队数量
func UpdateQueueDepth(depth int) {
	QueueDepth.Set(float64(depth))
}

// SetQueueCapacity 设置队列容量
func SetQueueCapacity(capacity int) {
	QueueCapacity.Set(float64(capacity))
}

// UpdateTaskRecords 按状态更新记录数
func UpdateTaskRecords(counts map[string]int) {
	for status, n := range counts {
		TaskRecords.WithLabelValues(status).Set(float64(n))
	}
}

// SetWorkerBusy 更新 worker 忙闲状态
func SetWorkerBusy(busy bool) {
	if busy {
		WorkerBusy.Set(1)
		return
	}
	WorkerBusy.Set(0)
}

// RecordError 记录错误
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// statusClass 将 HTTP 状态码转为类别
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
