package task

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/vision-taskhub/internal/model"
)

func samplePayload(idx int) SegmentFrame {
	return SegmentFrame{
		VideoPath: "/data/video",
		Filename:  "00001.jpg",
		FrameIdx:  idx,
		ObjIDs:    []int{1},
		BBoxes:    [][]float64{{10, 10, 50, 50}},
	}
}

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Create("t1", samplePayload(0)))

	v, err := store.Status("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusQueued, v.Status)
	assert.Nil(t, v.Result)
	assert.Empty(t, v.Kind)

	p, err := store.Claim("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskKindSegmentFrame, p.Kind())

	require.NoError(t, store.MarkItemDone("t1", "0"))
	v, err = store.Status("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusProcessing, v.Status)
	assert.Equal(t, map[string]string{"0": "done"}, v.Frames)
	assert.Nil(t, v.Result)
	assert.Empty(t, v.ErrorDetail)

	require.NoError(t, store.Complete("t1", map[string]string{"0": "overlay"}))
	v, err = store.Status("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, v.Status)
	assert.Equal(t, model.TaskKindSegmentFrame, v.Kind)
	assert.Equal(t, map[string]string{"0": "overlay"}, v.Result)
	assert.Empty(t, v.ErrorDetail)
	assert.NotNil(t, v.CreatedAt)
	assert.NotNil(t, v.StartedAt)
	assert.NotNil(t, v.FinishedAt)
}

func TestStore_NoRegression(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Create("t1", samplePayload(0)))

	// queued 不能直接结束
	err := store.Complete("t1", "x")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	err = store.Fail("t1", "boom")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = store.Claim("t1")
	require.NoError(t, err)
	require.NoError(t, store.Fail("t1", "boom"))

	// 终态不可再变
	_, err = store.Claim("t1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.True(t, errors.Is(store.Complete("t1", "x"), ErrInvalidTransition))
	assert.True(t, errors.Is(store.MarkItemDone("t1", "0"), ErrInvalidTransition))

	v, err := store.Status("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusError, v.Status)
	assert.Equal(t, "boom", v.ErrorDetail)
	assert.Nil(t, v.Result)
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Status("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.Claim("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.MarkItemDone("missing", "1"), ErrNotFound))
}

func TestStore_CreateDuplicate(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Create("t1", samplePayload(0)))
	assert.Error(t, store.Create("t1", samplePayload(1)))
	assert.Error(t, store.Create("", samplePayload(1)))
	assert.Error(t, store.Create("t2", nil))
}

func TestStore_StatusIsIdempotent(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Create("t1", samplePayload(0)))
	_, err := store.Claim("t1")
	require.NoError(t, err)
	require.NoError(t, store.Complete("t1", "ok"))

	first, err := store.Status("t1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := store.Status("t1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestStore_ViewFramesAreCopies(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Create("t1", samplePayload(0)))
	_, err := store.Claim("t1")
	require.NoError(t, err)
	require.NoError(t, store.MarkItemDone("t1", "1"))

	v, _ := store.Status("t1")
	v.Frames["2"] = "done"

	again, _ := store.Status("t1")
	assert.Len(t, again.Frames, 1)
}

func TestStore_EvictFinishedBefore(t *testing.T) {
	store := NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	for _, id := range []string{"queued", "running", "done", "failed"} {
		require.NoError(t, store.Create(id, samplePayload(0)))
	}
	for _, id := range []string{"running", "done", "failed"} {
		_, err := store.Claim(id)
		require.NoError(t, err)
	}
	require.NoError(t, store.Complete("done", "ok"))
	require.NoError(t, store.Fail("failed", "boom"))

	// 未到期不清理
	assert.Equal(t, 0, store.EvictFinishedBefore(base))

	n := store.EvictFinishedBefore(base.Add(time.Minute))
	assert.Equal(t, 2, n)

	_, err := store.Status("done")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.Status("queued")
	assert.NoError(t, err)
	_, err = store.Status("running")
	assert.NoError(t, err)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Create("t1", samplePayload(0)))
	_, err := store.Claim("t1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.MarkItemDone("t1", string(rune('a'+i)))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.Status("t1")
			_ = store.Counts()
		}()
	}
	wg.Wait()

	v, err := store.Status("t1")
	require.NoError(t, err)
	assert.Len(t, v.Frames, 20)
	assert.Equal(t, 1, store.Counts()[model.TaskStatusProcessing])
}
