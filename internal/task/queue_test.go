package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(3)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.TryEnqueue(id))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestQueue_FullFailsFast(t *testing.T) {
	q := NewQueue(2)
	require.NoError(t, q.TryEnqueue("a"))
	require.NoError(t, q.TryEnqueue("b"))

	done := make(chan error, 1)
	go func() { done <- q.TryEnqueue("c") }()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrCapacityExceeded))
	case <-time.After(time.Second):
		t.Fatal("TryEnqueue blocked on a full queue")
	}
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Cap())
}

func TestQueue_MinimumCapacity(t *testing.T) {
	q := NewQueue(0)
	assert.Equal(t, 1, q.Cap())
}

func TestQueue_DequeueBlocksUntilItem(t *testing.T) {
	q := NewQueue(1)
	got := make(chan string, 1)
	go func() {
		id, _ := q.Dequeue(context.Background())
		got <- id
	}()

	select {
	case <-got:
		t.Fatal("Dequeue returned on an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, q.TryEnqueue("x"))
	select {
	case id := <-got:
		assert.Equal(t, "x", id)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake up")
	}
}

func TestQueue_DequeueContextCancel(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestQueue_CloseDrains(t *testing.T) {
	q := NewQueue(3)
	require.NoError(t, q.TryEnqueue("a"))
	require.NoError(t, q.TryEnqueue("b"))
	q.Close()
	q.Close()

	assert.True(t, q.Closed())
	assert.True(t, errors.Is(q.TryEnqueue("c"), ErrQueueClosed))

	ctx := context.Background()
	id, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	id, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", id)

	_, err = q.Dequeue(ctx)
	assert.True(t, errors.Is(err, ErrQueueClosed))
}
