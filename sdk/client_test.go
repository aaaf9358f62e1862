package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SubmitAnalyzeVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze_video", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/data/frames", body["video_dir"])
		assert.Equal(t, float64(60), body["frames_needed"])
		assert.NotContains(t, body, "target_fps")

		_, _ = w.Write([]byte(`{"status":"queued","task_id":"abc"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/").SubmitAnalyzeVideo(context.Background(), AnalyzeVideoRequest{
		VideoDir:     "/data/frames",
		UserPrompt:   "p",
		FramesNeeded: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.TaskID)
	assert.Equal(t, "queued", resp.Status)
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/segment_frame":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Queue is full, try again later."}`))
		case "/task_status/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Task ID not found"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("plain failure"))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.SubmitSegmentFrame(ctx, SegmentFrameRequest{})
	assert.True(t, errors.Is(err, ErrQueueFull))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Queue is full, try again later.", apiErr.Message)

	_, err = c.TaskStatus(ctx, "missing")
	assert.True(t, errors.Is(err, ErrTaskNotFound))

	_, err = c.SubmitAnalyzeImage(ctx, AnalyzeImageRequest{})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "plain failure", apiErr.Message)
	assert.False(t, errors.Is(err, ErrQueueFull))
}

func TestClient_WaitForTask(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/task_status/ok":
			if polls.Add(1) < 3 {
				_, _ = w.Write([]byte(`{"status":"processing","task_id":"ok"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"done","task_id":"ok","result":{"status":"success","results":[{"time":0.5,"bbox_2d":[1,2,3,4],"label":"car","color":"red"}],"frame_count":4,"detection_count":1}}`))
		case "/task_status/bad":
			_, _ = w.Write([]byte(`{"status":"error","task_id":"bad","error_detail":"file not found"}`))
		case "/task_status/weird":
			_, _ = w.Write([]byte(`{"status":"paused","task_id":"weird"}`))
		default:
			_, _ = w.Write([]byte(`{"status":"queued","task_id":"slow"}`))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL)

	st, err := c.WaitForTask(context.Background(), "ok", 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusDone, st.Status)
	assert.EqualValues(t, 3, polls.Load())

	var result VideoResult
	require.NoError(t, st.UnmarshalResult(&result))
	assert.Equal(t, 4, result.FrameCount)
	dets, err := result.Detections()
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "car", dets[0].Label)
	assert.Equal(t, 0.5, *dets[0].Time)

	_, err = c.WaitForTask(context.Background(), "bad", time.Millisecond)
	assert.True(t, errors.Is(err, ErrTaskFailed))
	assert.Contains(t, err.Error(), "file not found")

	_, err = c.WaitForTask(context.Background(), "weird", time.Millisecond)
	assert.ErrorContains(t, err, "unknown task status")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = c.WaitForTask(ctx, "slow", 5*time.Millisecond)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSubmitWithRetry(t *testing.T) {
	cfg := SubmitRetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, BackoffFactor: 2}
	var retries []int
	cfg.OnRetry = func(attempt int, _ error) { retries = append(retries, attempt) }

	calls := 0
	resp, err := SubmitWithRetry(context.Background(), func(context.Context) (*QueuedResponse, error) {
		calls++
		if calls < 3 {
			return nil, &APIError{StatusCode: http.StatusTooManyRequests}
		}
		return &QueuedResponse{Status: "queued", TaskID: "t"}, nil
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "t", resp.TaskID)
	assert.Equal(t, []int{1, 2}, retries)

	calls = 0
	_, err = SubmitWithRetry(context.Background(), func(context.Context) (*QueuedResponse, error) {
		calls++
		return nil, &APIError{StatusCode: http.StatusBadRequest}
	}, cfg)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)

	_, err = SubmitWithRetry(context.Background(), func(context.Context) (*QueuedResponse, error) {
		return nil, &APIError{StatusCode: http.StatusTooManyRequests}
	}, cfg)
	assert.True(t, errors.Is(err, ErrQueueFull))
}
