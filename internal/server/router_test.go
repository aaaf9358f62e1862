package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/vision-taskhub/internal/frames"
	"github.com/azhengyongqin/vision-taskhub/internal/healthcheck"
	"github.com/azhengyongqin/vision-taskhub/internal/history"
	"github.com/azhengyongqin/vision-taskhub/internal/middleware"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

type testEnv struct {
	router http.Handler
	store  *task.Store
	queue  *task.Queue
	deps   Deps
}

func newTestEnv(t *testing.T, capacity int, mutate func(*Deps)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := task.NewStore()
	queue := task.NewQueue(capacity)
	deps := Deps{
		Gateway:       task.NewGateway(store, queue),
		Store:         store,
		Queue:         queue,
		Frames:        frames.NewScanner(nil, 0),
		HealthChecker: healthcheck.NewHealthChecker(time.Second),
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &testEnv{router: NewRouter(deps), store: store, queue: queue, deps: deps}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func segmentBody(dir string, frameIdx int) map[string]any {
	return map[string]any{
		"video_path": dir,
		"filename":   "00001.jpg",
		"frame_idx":  frameIdx,
		"obj_ids":    []int{1},
		"bboxes":     [][]float64{{10, 10, 50, 50}},
	}
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestSubmitAndPoll_Queued(t *testing.T) {
	env := newTestEnv(t, 5, nil)
	dir := t.TempDir()

	rr := env.do(t, http.MethodPost, "/segment_frame", segmentBody(dir, 0))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode(t, rr)
	assert.Equal(t, "queued", resp["status"])
	id, _ := resp["task_id"].(string)
	require.NotEmpty(t, id)

	for _, prefix := range []string{"", "/api/v1"} {
		rr = env.do(t, http.MethodGet, prefix+"/task_status/"+id, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		view := decode(t, rr)
		assert.Equal(t, map[string]any{"status": "queued", "task_id": id}, view)
	}
}

func TestSubmit_AllKinds(t *testing.T) {
	env := newTestEnv(t, 10, nil)
	dir := t.TempDir()

	bodies := map[string]any{
		"/segment_frame": segmentBody(dir, 0),
		"/segment_frames": map[string]any{
			"video_path":    dir,
			"filename":      "00001.jpg",
			"frame_indices": []int{0, 1},
			"obj_ids_list":  [][]int{{1}, {1}},
			"bboxes_list":   [][][]float64{{{1, 1, 2, 2}}, {{1, 1, 2, 2}}},
		},
		"/analyze_video": map[string]any{
			"video_dir":   dir,
			"user_prompt": "找出所有车辆",
		},
		"/analyze_image": map[string]any{
			"base64_images": []string{"aGVsbG8="},
			"user_prompt":   "检测",
		},
	}
	for path, body := range bodies {
		t.Run(path, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/v1"+path, body)
			assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, "queued", decode(t, rr)["status"])
		})
	}
	assert.Equal(t, 4, env.queue.Len())
}

func TestSubmit_QueueFull(t *testing.T) {
	env := newTestEnv(t, 2, nil)
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		rr := env.do(t, http.MethodPost, "/segment_frame", segmentBody(dir, i))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := env.do(t, http.MethodPost, "/segment_frame", segmentBody(dir, 9))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Queue is full, try again later.", decode(t, rr)["error"])
	assert.Equal(t, 2, env.store.Len())
}

func TestSubmit_QueueClosed(t *testing.T) {
	env := newTestEnv(t, 2, nil)
	env.queue.Close()

	rr := env.do(t, http.MethodPost, "/segment_frame", segmentBody(t.TempDir(), 0))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Zero(t, env.store.Len())
}

func TestSubmit_Validation(t *testing.T) {
	env := newTestEnv(t, 5, nil)
	dir := t.TempDir()

	mismatched := segmentBody(dir, 0)
	mismatched["obj_ids"] = []int{1, 2}

	badBox := segmentBody(dir, 0)
	badBox["bboxes"] = [][]float64{{1, 2, 3}}

	relative := segmentBody("frames", 0)

	missingIdx := segmentBody(dir, 0)
	delete(missingIdx, "frame_idx")

	tests := []struct {
		name string
		path string
		body any
	}{
		{"obj_ids length", "/segment_frame", mismatched},
		{"bbox arity", "/segment_frame", badBox},
		{"relative path", "/segment_frame", relative},
		{"missing frame_idx", "/segment_frame", missingIdx},
		{"target above original", "/analyze_video", map[string]any{
			"video_dir": dir, "user_prompt": "p", "original_fps": 2.0, "target_fps": 5.0,
		}},
		{"no images", "/analyze_image", map[string]any{"base64_images": []string{}, "user_prompt": "p"}},
		{"bad base64", "/analyze_image", map[string]any{"base64_images": []string{"%%%"}, "user_prompt": "p"}},
		{"malformed json", "/segment_frames", "not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
	assert.Zero(t, env.store.Len())
	assert.Zero(t, env.queue.Len())
}

func TestTaskStatus_NotFound(t *testing.T) {
	env := newTestEnv(t, 5, nil)

	rr := env.do(t, http.MethodGet, "/task_status/550e8400-e29b-41d4-a716-446655440000", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task ID not found", decode(t, rr)["error"])

	rr = env.do(t, http.MethodGet, "/task_status/bad$id", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type echoExecutor struct{}

func (echoExecutor) Execute(_ context.Context, p task.Payload, progress task.ProgressFunc) (any, error) {
	if sf, ok := p.(task.SegmentFrame); ok && sf.FrameIdx == 7 {
		return nil, errors.New("file not found: 00001.jpg")
	}
	progress("0")
	return map[string]string{"0": "overlay"}, nil
}

func TestTaskStatus_Terminal(t *testing.T) {
	var worker *task.Worker
	env := newTestEnv(t, 5, func(d *Deps) {
		worker = task.NewWorker(d.Store, d.Queue, echoExecutor{})
		d.Worker = worker
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	dir := t.TempDir()
	okID := decode(t, env.do(t, http.MethodPost, "/segment_frame", segmentBody(dir, 0)))["task_id"].(string)
	failID := decode(t, env.do(t, http.MethodPost, "/segment_frame", segmentBody(dir, 7)))["task_id"].(string)

	poll := func(id string) map[string]any {
		var view map[string]any
		require.Eventually(t, func() bool {
			rr := env.do(t, http.MethodGet, "/task_status/"+id, nil)
			view = nil
			if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
				return false
			}
			s := view["status"]
			return s == "done" || s == "error"
		}, 2*time.Second, 10*time.Millisecond)
		return view
	}

	done := poll(okID)
	assert.Equal(t, "done", done["status"])
	assert.Equal(t, map[string]any{"0": "overlay"}, done["result"])
	assert.NotContains(t, done, "error_detail")

	failed := poll(failID)
	assert.Equal(t, "error", failed["status"])
	assert.Contains(t, failed["error_detail"], "file not found")
	assert.NotContains(t, failed, "result")

	rr := env.do(t, http.MethodGet, "/queue/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode(t, rr)
	assert.Equal(t, float64(5), stats["capacity"])
	assert.Equal(t, true, stats["worker_alive"])
	records := stats["records"].(map[string]any)
	assert.Equal(t, float64(1), records["done"])
	assert.Equal(t, float64(1), records["error"])
}

func TestScanFolder(t *testing.T) {
	env := newTestEnv(t, 5, nil)
	root := t.TempDir()
	for _, name := range []string{"b.jpg", "a.jpg", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	rr := env.do(t, http.MethodPost, "/scan_folder", map[string]any{"folder_path": root})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode(t, rr)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(2), resp["frame_count"])
	first := resp["frames"].([]any)[0].(map[string]any)
	assert.Equal(t, "a.jpg", first["filename"])
	assert.Equal(t, float64(0), first["index"])

	rr = env.do(t, http.MethodPost, "/scan_folder", map[string]any{"folder_path": filepath.Join(root, "missing")})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "扫描文件夹失败")

	rr = env.do(t, http.MethodPost, "/scan_folder", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFrameImage(t *testing.T) {
	env := newTestEnv(t, 5, nil)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.jpg"), []byte("jpeg-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.gif"), []byte("gif"), 0o644))

	get := func(folder, filename string) *httptest.ResponseRecorder {
		q := "/frame_image?folder_path=" + folder + "&filename=" + filename
		return env.do(t, http.MethodGet, q, nil)
	}

	rr := get(root, "a.jpg")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "jpeg-bytes", rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, get("relative/dir", "a.jpg").Code)
	assert.Equal(t, http.StatusNotFound, get(root, "missing.jpg").Code)
	assert.Equal(t, http.StatusBadRequest, get(root, "a.gif").Code)
	assert.Equal(t, http.StatusBadRequest, get(root, "..%2Fescape.jpg").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/frame_image", nil).Code)
}

type fakeLister struct {
	got history.ListFilter
}

func (f *fakeLister) List(_ context.Context, filter history.ListFilter) ([]history.Execution, error) {
	f.got = filter
	return []history.Execution{{TaskID: "t-1", Status: "done", Kind: "segment_frame"}}, nil
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, 5, nil)
	assert.Equal(t, http.StatusNotImplemented, env.do(t, http.MethodGet, "/history", nil).Code)

	lister := &fakeLister{}
	env = newTestEnv(t, 5, func(d *Deps) { d.History = lister })

	rr := env.do(t, http.MethodGet, "/api/v1/history?status=done&kind=segment_frame&limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, float64(1), decode(t, rr)["count"])
	assert.Equal(t, history.ListFilter{Status: "done", Kind: "segment_frame", Limit: 10}, lister.got)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/history?status=queued", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/history?kind=render", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, 5, func(d *Deps) {
		d.HealthChecker.Register("queue", func(context.Context) error {
			if d.Queue.Closed() {
				return task.ErrQueueClosed
			}
			return nil
		})
	})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/readyz", nil).Code)

	env.queue.Close()
	rr := env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "queue is closed")

	rr = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "vision_taskhub_")
}

func TestPayloadTooLarge(t *testing.T) {
	env := newTestEnv(t, 5, func(d *Deps) { d.MaxPayloadBytes = 1024 })

	body := map[string]any{
		"base64_images": []string{strings.Repeat("A", 2048)},
		"user_prompt":   "p",
	}
	rr := env.do(t, http.MethodPost, "/analyze_image", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "1KB")
}

// countingReader 无限输出 JSON 字符并记录客户端实际被读取的字节数
type countingReader struct {
	n     int64
	total int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	if r.n >= r.total {
		return 0, io.EOF
	}
	if rem := r.total - r.n; int64(len(p)) > rem {
		p = p[:rem]
	}
	for i := range p {
		p[i] = ' '
	}
	r.n += int64(len(p))
	return len(p), nil
}

func TestPayloadTooLarge_ChunkedBody(t *testing.T) {
	env := newTestEnv(t, 5, func(d *Deps) { d.MaxPayloadBytes = 1024 })

	body := &countingReader{total: 8 << 20}
	req := httptest.NewRequest(http.MethodPost, "/analyze_image", body)
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "1KB")
	assert.LessOrEqual(t, body.n, int64(1024+middleware.MaxBodyLogSize+1))
	assert.Zero(t, env.store.Len())
}
