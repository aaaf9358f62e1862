package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{302, "3xx"},
		{404, "4xx"},
		{429, "4xx"},
		{503, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.status), tt.status)
	}
}

func TestRecordTaskRejected(t *testing.T) {
	before := testutil.ToFloat64(TasksRejectedTotal.WithLabelValues("segment_frame", "capacity"))
	RecordTaskRejected("segment_frame", "capacity")
	after := testutil.ToFloat64(TasksRejectedTotal.WithLabelValues("segment_frame", "capacity"))
	assert.Equal(t, before+1, after)
}

func TestGauges(t *testing.T) {
	UpdateQueueDepth(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(QueueDepth))

	SetWorkerBusy(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerBusy))
	SetWorkerBusy(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(WorkerBusy))

	UpdateTaskRecords(map[string]int{"done": 7})
	assert.Equal(t, float64(7), testutil.ToFloat64(TaskRecords.WithLabelValues("done")))
}
